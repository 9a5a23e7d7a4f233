package smoke

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
)

// syntheticWAV builds a minimal valid PCM WAV: 16-bit mono silence.
// Enough for the transcriber to accept and return an (empty) transcript.
func syntheticWAV(sampleRate, samples int) []byte {
	dataLen := samples * 2
	buf := &bytes.Buffer{}
	buf.WriteString("RIFF")
	binary.Write(buf, binary.LittleEndian, uint32(36+dataLen))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(buf, binary.LittleEndian, uint32(16))            // fmt chunk size
	binary.Write(buf, binary.LittleEndian, uint16(1))             // PCM
	binary.Write(buf, binary.LittleEndian, uint16(1))             // mono
	binary.Write(buf, binary.LittleEndian, uint32(sampleRate))    // sample rate
	binary.Write(buf, binary.LittleEndian, uint32(sampleRate*2))  // byte rate
	binary.Write(buf, binary.LittleEndian, uint16(2))             // block align
	binary.Write(buf, binary.LittleEndian, uint16(16))            // bits per sample
	buf.WriteString("data")
	binary.Write(buf, binary.LittleEndian, uint32(dataLen))
	buf.Write(make([]byte, dataLen))
	return buf.Bytes()
}

// syntheticPNG encodes a 1x1 opaque pixel.
func syntheticPNG() []byte {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, color.Black)
	buf := &bytes.Buffer{}
	// encoding a 1x1 RGBA never fails
	_ = png.Encode(buf, img)
	return buf.Bytes()
}

var pngMagic = []byte{0x89, 'P', 'N', 'G'}
