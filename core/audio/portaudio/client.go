// Package portaudio provides a combined capture and playback device client
// backed by PortAudio. It is the fallback for platforms where miniaudio
// misbehaves.
package portaudio

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"log"
	"sync"

	"github.com/gordonklaus/portaudio"
	"github.com/voicylabs/voicy-core/core/audio"
)

type Client struct {
	bufferSize int
	stream     *portaudio.Stream

	mu            sync.Mutex
	leftoverAudio []byte

	in  []int16
	out []int16
}

func NewClient(bufferSize int) (*Client, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize PortAudio: %w", err)
	}

	in := make([]int16, bufferSize)
	out := make([]int16, bufferSize)
	stream, err := portaudio.OpenDefaultStream(audio.DefaultChannels, audio.DefaultChannels, audio.DefaultSampleRate, bufferSize, in, out)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("failed to open PortAudio stream: %w", err)
	}

	return &Client{
		bufferSize: bufferSize,
		stream:     stream,
		in:         in,
		out:        out,
	}, nil
}

func (c *Client) Stream(ctx context.Context, onAudio func(audio []byte)) error {
	if err := c.stream.Start(); err != nil {
		return fmt.Errorf("failed to start PortAudio stream: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
			if err := c.stream.Read(); err != nil {
				log.Printf("Failed to read from PortAudio stream: %v", err)
			}

			audioBuffer := bytes.Buffer{}
			binary.Write(&audioBuffer, binary.LittleEndian, c.in)
			onAudio(audioBuffer.Bytes())
		}
	}
}

func (c *Client) Close() {
	c.stream.Close()
	portaudio.Terminate()
}

// SendAudio writes full device buffers synchronously and keeps the tail for
// the next call, so playback latency stays at one buffer.
func (c *Client) SendAudio(audio []byte) error {
	bufferSize := c.bufferSize * 2

	c.mu.Lock()
	defer c.mu.Unlock()

	audio = append(c.leftoverAudio, audio...)
	for i := range len(audio)/bufferSize + 1 {
		if (i+1)*bufferSize > len(audio) {
			c.leftoverAudio = make([]byte, len(audio)-i*bufferSize)
			copy(c.leftoverAudio, audio[i*bufferSize:])
			break
		}

		binary.Read(bytes.NewBuffer(audio[i*bufferSize:(i+1)*bufferSize]), binary.LittleEndian, c.out)
		c.stream.Write()
	}

	return nil
}

func (c *Client) ClearBuffer() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.leftoverAudio = nil
}

// AwaitDrain flushes the remaining partial buffer, padding it with silence.
func (c *Client) AwaitDrain() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.leftoverAudio) == 0 {
		return
	}

	padded := make([]byte, c.bufferSize*2)
	copy(padded, c.leftoverAudio)
	c.leftoverAudio = nil

	binary.Read(bytes.NewBuffer(padded), binary.LittleEndian, c.out)
	c.stream.Write()
}

func (c *Client) EncodingInfo() audio.EncodingInfo {
	return audio.GetDefaultEncodingInfo()
}
