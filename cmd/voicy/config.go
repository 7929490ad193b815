package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all client configuration
type Config struct {
	BackendURL string
	Device     string // "miniaudio" or "portaudio"
	BufferSize int    // PortAudio buffer size in frames
	MicEnabled bool
}

// LoadConfig loads configuration from environment variables with defaults
func LoadConfig() (*Config, error) {
	// Load .env file if it exists (doesn't error if missing)
	_ = godotenv.Load()

	config := &Config{
		Device:     "miniaudio",
		BufferSize: 512,
		MicEnabled: true,
	}

	// Required: VOICY_BACKEND_URL
	config.BackendURL = os.Getenv("VOICY_BACKEND_URL")
	if config.BackendURL == "" {
		return nil, fmt.Errorf("VOICY_BACKEND_URL environment variable is required")
	}

	// Optional: VOICY_DEVICE ("miniaudio" or "portaudio")
	if device := os.Getenv("VOICY_DEVICE"); device != "" {
		switch device {
		case "miniaudio", "portaudio":
			config.Device = device
		default:
			return nil, fmt.Errorf("invalid VOICY_DEVICE: must be 'miniaudio' or 'portaudio'")
		}
	}

	// Optional: VOICY_BUFFER_SIZE (in frames)
	if bufferSize := os.Getenv("VOICY_BUFFER_SIZE"); bufferSize != "" {
		b, err := strconv.Atoi(bufferSize)
		if err != nil {
			return nil, fmt.Errorf("invalid VOICY_BUFFER_SIZE: %w", err)
		}
		config.BufferSize = b
	}

	// Optional: VOICY_MIC ("on" or "off")
	if mic := os.Getenv("VOICY_MIC"); mic != "" {
		switch mic {
		case "on":
			config.MicEnabled = true
		case "off":
			config.MicEnabled = false
		default:
			return nil, fmt.Errorf("invalid VOICY_MIC: must be 'on' or 'off'")
		}
	}

	return config, nil
}
