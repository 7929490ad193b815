package audio

const (
	DefaultSampleRate = 16000
	DefaultChannels   = 1
	DefaultFormat     = "linear16"
)

func GetDefaultEncodingInfo() EncodingInfo {
	return EncodingInfo{
		SampleRate: DefaultSampleRate,
		Channels:   DefaultChannels,
		Format:     encodingFormat(DefaultFormat),
	}
}

type EncodingInfo struct {
	SampleRate int
	Channels   int
	Format     encodingFormat
}

func (e EncodingInfo) IsZero() bool {
	return e.SampleRate == 0 || e.Format.Name() == ""
}

// BytesPerSecond reports the raw PCM data rate for this encoding.
func (e EncodingInfo) BytesPerSecond() int {
	channels := e.Channels
	if channels == 0 {
		channels = DefaultChannels
	}
	return e.SampleRate * channels * e.Format.ByteSize()
}

type encodingFormat string

func (e encodingFormat) Name() string {
	return string(e)
}

func (e encodingFormat) ByteSize() int {
	switch e {
	case EncodingMulaw, EncodingALaw:
		return 1
	case EncodingLinear16:
		return 2
	}
	return -1
}

const (
	EncodingMulaw    encodingFormat = "mulaw"
	EncodingALaw     encodingFormat = "alaw"
	EncodingLinear16 encodingFormat = "linear16"
)
