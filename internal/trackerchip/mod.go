package trackerchip

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"
)

// ParseMOD parses a ProTracker-family MOD file, adapted from mod.go's
// NewMODSongFromBytes, retargeted to build the unified note/Pattern
// representation instead of the undefined song.patterns the teacher's
// snapshot referenced.
func ParseMOD(songBytes []byte) (*Song, error) {
	song := &Song{
		Speed:   6,
		Tempo:   125,
		Samples: make([]Sample, 31),
	}

	buf := bytes.NewReader(songBytes)
	title := make([]byte, 20)
	if _, err := buf.Read(title); err != nil {
		return nil, err
	}
	song.Title = strings.TrimRight(string(title), "\x00")

	for i := 0; i < 31; i++ {
		s, err := readMODSampleInfo(buf)
		if err != nil {
			return nil, err
		}
		song.Samples[i] = *s
	}

	orders := struct {
		Orders    uint8
		_         uint8
		OrderData [128]byte
	}{}
	if err := binary.Read(buf, binary.BigEndian, &orders); err != nil {
		return nil, err
	}
	song.Orders = make([]byte, orders.Orders)
	copy(song.Orders, orders.OrderData[:orders.Orders])

	patterns := int(song.Orders[0])
	for i := 1; i < 128; i++ {
		if int(orders.OrderData[i]) > patterns {
			patterns = int(orders.OrderData[i])
		}
	}
	patterns++

	sig := make([]byte, 4)
	if n, err := buf.Read(sig); n != 4 || err != nil {
		return nil, err
	}
	switch string(sig[2:]) {
	case "K.": // M.K.
		song.Channels = 4
	case "HN": // xCHN
		song.Channels = int(sig[0]) - 48
	case "CH": // xxCH
		song.Channels = (int(sig[0])-48)*10 + (int(sig[1]) - 48)
	default:
		return nil, fmt.Errorf("unrecognized MOD format %q", string(sig))
	}

	song.patterns = make([][]note, patterns)
	scratch := make([]byte, rowsPerPattern*song.Channels*bytesPerChannel)
	for i := 0; i < patterns; i++ {
		song.patterns[i] = initNotePattern(song.Channels)
		if n, err := buf.Read(scratch); n != len(scratch) || err != nil {
			return nil, err
		}
		for p := 0; p < rowsPerPattern*song.Channels; p++ {
			n := noteFromMODBytes(scratch[p*bytesPerChannel : (p+1)*bytesPerChannel])
			if n.Effect == effectSetVolume {
				n.Volume = int(n.Param)
			}
			song.patterns[i][p] = n
		}
	}

	for i := range song.Samples {
		n := song.Samples[i].Length
		if n > buf.Len() {
			n = buf.Len()
		}
		data := make([]int8, song.Samples[i].Length)
		raw := make([]byte, n)
		if n > 0 {
			if _, err := buf.Read(raw); err != nil {
				return nil, err
			}
		}
		for j, b := range raw {
			data[j] = int8(b)
		}
		song.Samples[i].Data = data
		song.Samples[i].Length = n
	}

	return song, nil
}

func readMODSampleInfo(r *bytes.Reader) (*Sample, error) {
	data := struct {
		Name      [22]byte
		Length    uint16
		FineTune  uint8
		Volume    uint8
		LoopStart uint16
		LoopLen   uint16
	}{}
	if err := binary.Read(r, binary.BigEndian, &data); err != nil {
		return nil, err
	}

	smp := &Sample{
		Name:      strings.TrimRight(string(data.Name[:]), "\x00"),
		Length:    int(data.Length) * 2,
		FineTune:  int(data.FineTune&7) - int(data.FineTune&8) + 8,
		Volume:    int(data.Volume),
		LoopStart: int(data.LoopStart) * 2,
		LoopLen:   int(data.LoopLen) * 2,
	}
	if smp.LoopLen < 4 {
		smp.LoopLen = 0
	}

	// Loop data overshooting the sample end is corrected the way
	// MilkyTracker does it, per mod.go's comment.
	if smp.LoopStart+smp.LoopLen > smp.Length {
		dx := smp.LoopStart + smp.LoopLen - smp.Length
		smp.LoopStart -= dx
		if smp.LoopStart+smp.LoopLen > smp.Length {
			dx = smp.LoopStart + smp.LoopLen - smp.Length
			smp.LoopLen -= dx
		}
	}
	if smp.LoopLen < 2 {
		smp.LoopLen = 0
	}

	return smp, nil
}

func noteFromMODBytes(nb []byte) note {
	period := int(nb[0]&0xF)<<8 + int(nb[1])
	return note{
		Sample: int(nb[0]&0xF0 + nb[2]>>4),
		Pitch:  periodToPlayerNote(period),
		Effect: nb[2] & 0xF,
		Param:  nb[3],
		Volume: noVolume,
	}
}
