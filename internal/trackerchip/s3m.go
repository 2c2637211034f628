package trackerchip

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrInvalidS3M is returned when the data does not carry the 'SCRM' magic.
var ErrInvalidS3M = errors.New("invalid S3M file")

// ParseS3M parses a Scream Tracker 3 module, adapted from s3m.go, retargeted
// to the unified note/Pattern representation (see song.go's doc comment for
// why).
func ParseS3M(songBytes []byte) (*Song, error) {
	if len(songBytes) < 48 || string(songBytes[44:48]) != "SCRM" {
		return nil, ErrInvalidS3M
	}

	song := &Song{}
	buf := bytes.NewReader(songBytes)
	title := make([]byte, 28)
	if _, err := buf.Read(title); err != nil {
		return nil, err
	}
	song.Title = strings.TrimRight(string(title), "\x00")

	header := struct {
		Pad             byte
		Filetype        byte
		_               uint16
		Length          uint16
		NumInstruments  uint16
		NumPatterns     uint16
		Flags           uint16
		Tracker         uint16
		SampleFormat    uint16
		_               [4]byte // 'SCRM'
		Volume          uint8
		Speed           uint8
		Tempo           uint8
		MastVolume      uint8
		_               uint8
		Panning         uint8
		_               [8]byte
		_               [2]byte
		ChannelSettings [32]byte
	}{}
	if err := binary.Read(buf, binary.LittleEndian, &header); err != nil {
		return nil, err
	}
	song.Tempo = int(header.Tempo)
	song.Speed = int(header.Speed)

	var nc int
	for nc = 0; nc < 32; nc++ {
		if header.ChannelSettings[nc] == 255 {
			break
		}
	}
	song.Channels = nc

	orders := make([]byte, header.Length)
	if _, err := buf.Read(orders); err != nil {
		return nil, err
	}
	song.Orders = make([]byte, 0, header.Length)
	for _, pat := range orders {
		if pat == 255 {
			break
		}
		song.Orders = append(song.Orders, pat)
	}

	paras := make([]uint16, int(header.NumInstruments)+int(header.NumPatterns))
	if err := binary.Read(buf, binary.LittleEndian, paras); err != nil {
		return nil, err
	}

	song.Samples = make([]Sample, int(header.NumInstruments))
	for i := 0; i < int(header.NumInstruments); i++ {
		if _, err := buf.Seek(int64(paras[i])*16, io.SeekStart); err != nil {
			return nil, err
		}
		instHeader := &struct {
			Type         byte
			Filename     [12]byte
			MemSegHi     byte
			MemSegLo     uint16
			SampleLength uint16
			_            uint16
			LoopBegin    uint16
			_            uint16
			LoopEnd      uint16
			_            uint16
			Volume       byte
			_            byte
			Packing      byte
			Flags        byte
			C2Speed      uint16
			_            uint16
			_            [12]byte
			Name         [28]byte
			Scrs         [4]byte
		}{}
		if err := binary.Read(buf, binary.LittleEndian, instHeader); err != nil {
			return nil, err
		}
		if instHeader.Type > 1 {
			return nil, fmt.Errorf("unsupported sample type %d", instHeader.Type)
		}
		if instHeader.Flags&4 == 4 {
			return nil, fmt.Errorf("16-bit samples not currently supported")
		}

		sample := Sample{
			Length:    int(instHeader.SampleLength),
			LoopStart: int(instHeader.LoopBegin),
			LoopLen:   int(instHeader.LoopEnd) - int(instHeader.LoopBegin),
			Name:      strings.TrimRight(string(instHeader.Name[:]), "\x00"),
			C4Speed:   int(instHeader.C2Speed),
			Volume:    int(instHeader.Volume),
		}

		dataOffset := (uint(instHeader.MemSegHi)<<16 | uint(instHeader.MemSegLo)) * 16
		sample.Data = make([]int8, sample.Length)
		if sample.Length > 0 {
			if _, err := buf.Seek(int64(dataOffset), io.SeekStart); err != nil {
				return nil, err
			}
			if err := binary.Read(buf, binary.LittleEndian, sample.Data); err != nil {
				return nil, err
			}
			for j := range sample.Data {
				sample.Data[j] = int8(byte(sample.Data[j]) ^ 128)
			}
		}

		song.Samples[i] = sample
	}

	song.patterns = make([][]note, header.NumPatterns)
	for i := 0; i < int(header.NumPatterns); i++ {
		if _, err := buf.Seek(int64(paras[i+int(header.NumInstruments)])*16, io.SeekStart); err != nil {
			return nil, err
		}

		var packedLen int16
		if err := binary.Read(buf, binary.LittleEndian, &packedLen); err != nil {
			return nil, err
		}
		packedLen -= 2

		song.patterns[i] = initNotePattern(song.Channels)

		row := 0
		for packedLen > 0 {
			b, err := buf.ReadByte()
			if err != nil {
				return nil, err
			}
			packedLen--
			if b == 0 {
				row++
				if row >= rowsPerPattern {
					break
				}
				continue
			}

			chn := int(b & 31)
			if chn >= song.Channels {
				skip := []int64{0, 2, 1, 3, 2, 4, 3, 5}[b>>5]
				if _, err := buf.Seek(skip, io.SeekCurrent); err != nil {
					return nil, err
				}
				packedLen -= int16(skip)
				continue
			}

			no := &song.patterns[i][row*song.Channels+chn]

			if b&32 == 32 {
				noter, _ := buf.ReadByte()
				intr, _ := buf.ReadByte()
				packedLen -= 2

				if noter == 255 {
					no.Pitch = noNote
				} else {
					no.Pitch = playerNote(12 + 12*int(noter>>4) + int(noter&0xF))
				}
				no.Sample = int(intr)
			}

			if b&64 == 64 {
				vol, _ := buf.ReadByte()
				packedLen--
				no.Volume = int(vol)
			}

			if b&128 == 128 {
				efct, _ := buf.ReadByte()
				parm, _ := buf.ReadByte()
				efct, parm = convertS3MEffect(efct, parm)
				no.Effect = efct
				no.Param = parm
				packedLen -= 2
			}
		}
	}

	return song, nil
}
