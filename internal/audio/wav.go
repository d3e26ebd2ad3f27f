// Package audio wraps raw PCM streams in a WAV container so transcription
// backends that reject headerless audio can consume them.
package audio

import (
	"bytes"
	"encoding/binary"
)

const (
	// DefaultSampleRate matches the client capture format: 16kHz 16-bit
	// mono PCM.
	DefaultSampleRate = 16000
	pcmChannels       = 1
	pcmBitDepth       = 16
)

// WrapPCM returns the PCM payload prefixed with a standard 44-byte WAV
// header for mono 16-bit audio at the given sample rate.
func WrapPCM(pcm []byte, sampleRate int) []byte {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}

	byteRate := sampleRate * pcmChannels * pcmBitDepth / 8
	blockAlign := pcmChannels * pcmBitDepth / 8

	buf := bytes.NewBuffer(make([]byte, 0, 44+len(pcm)))
	_, _ = buf.WriteString("RIFF")
	_ = binary.Write(buf, binary.LittleEndian, uint32(36+len(pcm)))
	_, _ = buf.WriteString("WAVE")
	_, _ = buf.WriteString("fmt ")
	_ = binary.Write(buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(buf, binary.LittleEndian, uint16(1))
	_ = binary.Write(buf, binary.LittleEndian, uint16(pcmChannels))
	_ = binary.Write(buf, binary.LittleEndian, uint32(sampleRate))
	_ = binary.Write(buf, binary.LittleEndian, uint32(byteRate))
	_ = binary.Write(buf, binary.LittleEndian, uint16(blockAlign))
	_ = binary.Write(buf, binary.LittleEndian, uint16(pcmBitDepth))
	_, _ = buf.WriteString("data")
	_ = binary.Write(buf, binary.LittleEndian, uint32(len(pcm)))
	_, _ = buf.Write(pcm)

	return buf.Bytes()
}
