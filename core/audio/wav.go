package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// MIMETypeWAV is the content type declared for encoded utterances.
const MIMETypeWAV = "audio/wav"

const wavHeaderSize = 44

// ErrEmptyBuffer is returned when there is no audio to encode.
var ErrEmptyBuffer = errors.New("audio buffer is empty")

// EncodeWAV wraps a raw PCM buffer in a WAV container so it can be shipped
// as a file upload. The transform is pure: the input buffer is copied, never
// retained.
//
// Only linear PCM encodings can be described by the header this writes;
// anything else is rejected.
func EncodeWAV(pcm []byte, encodingInfo EncodingInfo) ([]byte, error) {
	if len(pcm) == 0 {
		return nil, ErrEmptyBuffer
	}

	if encodingInfo.IsZero() {
		encodingInfo = GetDefaultEncodingInfo()
	}
	if encodingInfo.Format != EncodingLinear16 {
		return nil, fmt.Errorf("cannot encode %q audio as WAV", encodingInfo.Format.Name())
	}

	channels := encodingInfo.Channels
	if channels == 0 {
		channels = DefaultChannels
	}
	bitsPerSample := encodingInfo.Format.ByteSize() * 8
	byteRate := encodingInfo.SampleRate * channels * encodingInfo.Format.ByteSize()
	blockAlign := channels * encodingInfo.Format.ByteSize()

	wav := make([]byte, wavHeaderSize+len(pcm))

	copy(wav[0:4], "RIFF")
	binary.LittleEndian.PutUint32(wav[4:8], uint32(36+len(pcm)))
	copy(wav[8:12], "WAVE")

	copy(wav[12:16], "fmt ")
	binary.LittleEndian.PutUint32(wav[16:20], 16) // PCM subchunk size
	binary.LittleEndian.PutUint16(wav[20:22], 1)  // PCM format tag
	binary.LittleEndian.PutUint16(wav[22:24], uint16(channels))
	binary.LittleEndian.PutUint32(wav[24:28], uint32(encodingInfo.SampleRate))
	binary.LittleEndian.PutUint32(wav[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(wav[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(wav[34:36], uint16(bitsPerSample))

	copy(wav[36:40], "data")
	binary.LittleEndian.PutUint32(wav[40:44], uint32(len(pcm)))
	copy(wav[wavHeaderSize:], pcm)

	return wav, nil
}
