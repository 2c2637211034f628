// Package wav writes tracker song renders to disk as 16-bit stereo PCM
// WAV files, tagging them with the title/composer identification the
// chipplayer capability already exposes via SongInfo.
// See http://soundfile.sapp.org/doc/WaveFormat/ for format documentation.
package wav

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"

	"github.com/oldplay/oldplay/chipplayer"
)

const wavTypePCM = 1

// ErrInvalidChunkHeaderLength means that the provided chunk name was not
// 4 characters.
var ErrInvalidChunkHeaderLength = errors.New("wav: chunk header name is not 4 characters")

// Writer writes a WAV file into WS.
type Writer struct {
	WS io.WriteSeeker

	dataSizeOffset int64
}

type format struct {
	AudioFormat   uint16
	Channels      uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
}

// NewWriter returns a Writer that writes a stereo 16-bit PCM WAV file to
// ws. When info carries a Title or Composer, a LIST/INFO chunk (INAM/
// IART) is embedded between the fmt and data chunks so the render keeps
// the song's identification.
func NewWriter(ws io.WriteSeeker, sampleRate int, info chipplayer.SongInfo) (*Writer, error) {
	writer := &Writer{WS: ws}

	// Zero length for now, come back and fill this in on Finish.
	if err := writer.writeChunkHeader("RIFF", 0); err != nil {
		return nil, err
	}
	if _, err := ws.Write([]byte("WAVE")); err != nil {
		return nil, err
	}

	if err := writer.writeChunkHeader("fmt ", 16); err != nil {
		return nil, err
	}
	fmtChunk := format{AudioFormat: wavTypePCM, Channels: 2, SampleRate: uint32(sampleRate), BitsPerSample: 16}
	fmtChunk.ByteRate = uint32(sampleRate) * 2 * (16 / 8)
	fmtChunk.BlockAlign = 2 * (16 / 8)
	if err := binary.Write(ws, binary.LittleEndian, fmtChunk); err != nil {
		return nil, err
	}

	if infoList := buildInfoList(info); infoList != nil {
		if _, err := ws.Write(infoList); err != nil {
			return nil, err
		}
	}

	if err := writer.writeChunkHeader("data", 0); err != nil {
		return nil, err
	}
	dataOffset, err := ws.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, err
	}
	writer.dataSizeOffset = dataOffset - 4

	return writer, nil
}

// buildInfoList renders a "LIST"/"INFO" chunk carrying info's Title as
// INAM and Composer as IART, or nil if both are empty.
func buildInfoList(info chipplayer.SongInfo) []byte {
	var fields bytes.Buffer
	writeInfoField(&fields, "INAM", info.Title)
	writeInfoField(&fields, "IART", info.Composer)
	if fields.Len() == 0 {
		return nil
	}

	var chunk bytes.Buffer
	chunk.WriteString("LIST")
	binary.Write(&chunk, binary.LittleEndian, int32(4+fields.Len()))
	chunk.WriteString("INFO")
	chunk.Write(fields.Bytes())
	return chunk.Bytes()
}

// writeInfoField appends a RIFF INFO sub-chunk for value under fourCC,
// word-padded per the RIFF spec, or does nothing if value is empty.
func writeInfoField(buf *bytes.Buffer, fourCC, value string) {
	if value == "" {
		return
	}
	data := append([]byte(value), 0) // NUL-terminated per RIFF INFO convention
	buf.WriteString(fourCC)
	binary.Write(buf, binary.LittleEndian, int32(len(data)))
	buf.Write(data)
	if len(data)%2 == 1 {
		buf.WriteByte(0)
	}
}

// WriteFrame writes the provided interleaved stereo samples (L, R, L, R,
// ...) to w.
func (w *Writer) WriteFrame(samples []int16) error {
	return binary.Write(w.WS, binary.LittleEndian, samples)
}

// Finish must be called when all data has been written to the writer. This
// allows the writer to go back and fill in the RIFF and data chunk sizes,
// which aren't known until the end.
func (w *Writer) Finish() (int64, error) {
	wlen, err := w.WS.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, err
	}

	if offset, err := w.WS.Seek(4, io.SeekStart); offset != 4 || err != nil {
		return 0, err
	}
	if err := binary.Write(w.WS, binary.LittleEndian, int32(wlen-8)); err != nil {
		return 0, err
	}

	if offset, err := w.WS.Seek(w.dataSizeOffset, io.SeekStart); offset != w.dataSizeOffset || err != nil {
		return 0, err
	}
	if err := binary.Write(w.WS, binary.LittleEndian, int32(wlen-(w.dataSizeOffset+4))); err != nil {
		return 0, err
	}

	return wlen, nil
}

func (w *Writer) writeChunkHeader(chunk string, initialSize int) error {
	if len(chunk) != 4 {
		return ErrInvalidChunkHeaderLength
	}
	if n, err := w.WS.Write([]byte(chunk)); n != 4 || err != nil {
		return err
	}
	return binary.Write(w.WS, binary.LittleEndian, int32(initialSize))
}
