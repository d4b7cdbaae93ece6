package container

import (
	"bytes"
	"io"
	"testing"

	"github.com/go-audio/wav"
	"github.com/stretchr/testify/suite"
)

const wavHeaderSize = 44

type WAVSuite struct {
	suite.Suite
	format Format
}

func TestWAVSuite(t *testing.T) {
	suite.Run(t, new(WAVSuite))
}

func (s *WAVSuite) SetupTest() {
	s.format = Format{SampleRate: 16000, Channels: 1}
}

func (s *WAVSuite) TestAssemblePreservesChunkOrderExactly() {
	chunks := [][]byte{
		{0x01, 0x00, 0x02, 0x00},
		{0xff, 0x7f},
		{0x00, 0x80, 0x10, 0x20, 0x30, 0x40},
	}

	payload, err := Assemble(chunks, s.format)
	s.Require().NoError(err)

	expected := bytes.Join(chunks, nil)
	s.Equal(ContentTypeWAV, payload.ContentType)
	s.Equal(FileNameWAV, payload.FileName)
	s.Require().Len(payload.Data, wavHeaderSize+len(expected))
	s.Equal(expected, payload.Data[wavHeaderSize:])
}

func (s *WAVSuite) TestAssembleWritesDecodableHeader() {
	payload, err := Assemble([][]byte{{0x01, 0x00, 0x02, 0x00}}, Format{SampleRate: 24000, Channels: 2})
	s.Require().NoError(err)

	dec := wav.NewDecoder(bytes.NewReader(payload.Data))
	dec.ReadInfo()
	s.Require().NoError(dec.Err())
	s.EqualValues(24000, dec.SampleRate)
	s.EqualValues(2, dec.NumChans)
	s.EqualValues(16, dec.BitDepth)
	s.Equal([]byte("RIFF"), payload.Data[0:4])
	s.Equal([]byte("WAVE"), payload.Data[8:12])
}

func (s *WAVSuite) TestAssembleEmptyRecording() {
	payload, err := Assemble(nil, s.format)
	s.Require().NoError(err)
	s.Len(payload.Data, wavHeaderSize)
}

func (s *WAVSuite) TestEncodeWAVDropsTrailingOddByte() {
	data, err := EncodeWAV([]byte{0x01, 0x00, 0x02}, s.format)
	s.Require().NoError(err)
	s.Equal([]byte{0x01, 0x00}, data[wavHeaderSize:])
}

func (s *WAVSuite) TestEncodeWAVRejectsInvalidFormat() {
	_, err := EncodeWAV(nil, Format{SampleRate: 0, Channels: 1})
	s.Error(err)

	_, err = EncodeWAV(nil, Format{SampleRate: 16000})
	s.Error(err)
}

func (s *WAVSuite) TestSeekBufferOverwritesAndExtends() {
	b := &seekBuffer{}
	_, err := b.Write([]byte("abcdef"))
	s.Require().NoError(err)

	pos, err := b.Seek(2, io.SeekStart)
	s.Require().NoError(err)
	s.EqualValues(2, pos)
	_, err = b.Write([]byte("XY"))
	s.Require().NoError(err)

	_, err = b.Seek(0, io.SeekEnd)
	s.Require().NoError(err)
	_, err = b.Write([]byte("!"))
	s.Require().NoError(err)

	s.Equal("abXYef!", string(b.Bytes()))

	_, err = b.Seek(-1, io.SeekStart)
	s.Error(err)
}
