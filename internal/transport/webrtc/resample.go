package webrtc

import "encoding/binary"

// samplesPerGroup is how many consecutive 48 kHz samples are averaged
// into one 16 kHz output sample.
const samplesPerGroup = 3

// bytesPerSample is the width of one PCM16 sample.
const bytesPerSample = 2

// downsampler converts a stream of 48 kHz mono PCM16 big-endian audio
// (the wire format of RTP's L16 payload) into 16 kHz mono PCM16
// little-endian audio, by averaging each group of three consecutive
// input samples into one output sample. It is stateful across calls to
// Push so that RTP packet boundaries, which rarely align on a multiple
// of three samples, never lose or duplicate a sample.
type downsampler struct {
	carry []byte // 0..(groupBytes-1) leftover input bytes from the previous Push
}

const groupBytes = samplesPerGroup * bytesPerSample

// push appends in to any carried-over bytes from the previous call,
// emits one little-endian PCM16 sample per complete group of three
// input samples, and carries any remaining partial group forward.
func (d *downsampler) push(in []byte) []byte {
	buf := append(d.carry, in...)
	complete := len(buf) / groupBytes * groupBytes

	out := make([]byte, 0, complete/groupBytes*bytesPerSample)
	for i := 0; i < complete; i += groupBytes {
		var sum int32
		for s := 0; s < samplesPerGroup; s++ {
			off := i + s*bytesPerSample
			sample := int16(binary.BigEndian.Uint16(buf[off : off+bytesPerSample]))
			sum += int32(sample)
		}
		avg := int16(sum / samplesPerGroup)
		out = binary.LittleEndian.AppendUint16(out, uint16(avg))
	}

	leftover := make([]byte, len(buf)-complete)
	copy(leftover, buf[complete:])
	d.carry = leftover

	return out
}
