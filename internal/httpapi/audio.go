package httpapi

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"os/exec"

	"github.com/vaak-ai/voxengine/internal/voxerr"
)

// decodeAudio converts raw audio bytes in format ("webm", "wav", or "pcm")
// into PCM16 little-endian mono samples at 16 kHz, the shape every
// Transcriber implementation expects.
func decodeAudio(ctx context.Context, data []byte, format string) ([]byte, error) {
	switch format {
	case "pcm":
		return data, nil
	case "wav":
		return extractWAVData(data)
	case "webm", "opus":
		return decodeWithFFmpeg(ctx, data)
	default:
		return nil, voxerr.Newf(voxerr.InvalidInput, "httpapi.decodeAudio", "unsupported audio_format %q", format)
	}
}

// extractWAVData scans a WAV container's chunk list for the "data" chunk
// and returns its payload, assumed already PCM16LE mono. Malformed or
// truncated input is rejected rather than read past the buffer.
func extractWAVData(wav []byte) ([]byte, error) {
	const headerLen = 12 // "RIFF" + size + "WAVE"
	if len(wav) < headerLen {
		return nil, voxerr.New(voxerr.InvalidInput, "httpapi.extractWAVData", fmt.Errorf("wav file too short"))
	}

	pos := headerLen
	for pos+8 <= len(wav) {
		chunkID := wav[pos : pos+4]
		chunkSize := int(binary.LittleEndian.Uint32(wav[pos+4 : pos+8]))
		dataStart := pos + 8

		if string(chunkID) == "data" {
			dataEnd := dataStart + chunkSize
			if dataEnd > len(wav) {
				return nil, voxerr.New(voxerr.InvalidInput, "httpapi.extractWAVData", fmt.Errorf("data chunk exceeds file length"))
			}
			return wav[dataStart:dataEnd], nil
		}

		pos = dataStart + chunkSize
		if chunkSize%2 == 1 {
			pos++ // chunks are word-aligned
		}
	}

	return nil, voxerr.New(voxerr.InvalidInput, "httpapi.extractWAVData", fmt.Errorf("no data chunk found"))
}

// decodeWithFFmpeg shells out to ffmpeg to transcode a compressed
// container (webm/opus) to raw PCM16LE mono at 16 kHz. Input and output
// go through owner-only temp files that ffmpeg never sees as anything
// but a regular path.
func decodeWithFFmpeg(ctx context.Context, data []byte) ([]byte, error) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return nil, voxerr.New(voxerr.BackendUnavailable, "httpapi.decodeWithFFmpeg", err)
	}

	in, err := os.CreateTemp("", "voxengine-ptt-in-*.webm")
	if err != nil {
		return nil, voxerr.New(voxerr.Internal, "httpapi.decodeWithFFmpeg", err)
	}
	defer os.Remove(in.Name())
	defer in.Close()
	if err := os.Chmod(in.Name(), 0o600); err != nil {
		return nil, voxerr.New(voxerr.Internal, "httpapi.decodeWithFFmpeg", err)
	}
	if _, err := in.Write(data); err != nil {
		return nil, voxerr.New(voxerr.Internal, "httpapi.decodeWithFFmpeg", err)
	}
	in.Close()

	outFile, err := os.CreateTemp("", "voxengine-ptt-out-*.raw")
	if err != nil {
		return nil, voxerr.New(voxerr.Internal, "httpapi.decodeWithFFmpeg", err)
	}
	outPath := outFile.Name()
	defer os.Remove(outPath)
	outFile.Close()

	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-y",
		"-i", in.Name(),
		"-ar", "16000",
		"-ac", "1",
		"-f", "s16le",
		"-acodec", "pcm_s16le",
		outPath,
	)
	if err := cmd.Run(); err != nil {
		return nil, voxerr.New(voxerr.Internal, "httpapi.decodeWithFFmpeg", err)
	}

	out, err := os.ReadFile(outPath)
	if err != nil {
		return nil, voxerr.New(voxerr.Internal, "httpapi.decodeWithFFmpeg", err)
	}
	return out, nil
}
