package provider

import (
	"bytes"
	"encoding/binary"
)

// FileBytes renders the audio as a self-contained file. The PCM variant is
// wrapped in a WAV container; the compressed variant is returned verbatim.
// The second return value is a suggested file extension.
func (a *Audio) FileBytes() ([]byte, string) {
	if a.Encoding == EncodingCompressed {
		ext := ".mp3"
		if a.MIMEType == "audio/wav" {
			ext = ".wav"
		}
		return a.Compressed, ext
	}
	return wavContainer(a.PCM, a.SampleRate, a.Channels, a.BitsPerSample), ".wav"
}

// wavContainer wraps raw little-endian PCM samples in a RIFF/WAVE header.
func wavContainer(pcm []byte, sampleRate, channels, bitsPerSample int) []byte {
	blockAlign := channels * bitsPerSample / 8
	byteRate := sampleRate * blockAlign

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+len(pcm)))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // linear PCM
	binary.Write(&buf, binary.LittleEndian, uint16(channels))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(byteRate))
	binary.Write(&buf, binary.LittleEndian, uint16(blockAlign))
	binary.Write(&buf, binary.LittleEndian, uint16(bitsPerSample))

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(len(pcm)))
	buf.Write(pcm)
	return buf.Bytes()
}
