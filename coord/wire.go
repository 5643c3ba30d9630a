package coord

import (
	"encoding/binary"
	"fmt"
	"io"
)

// The socket deployment uses a hand-packed binary layout rather than a
// general-purpose serialization library: every frame is a one-byte tag
// followed by fixed-width fields in network byte order, with variable
// length slices (Tour, Paused) prefixed by an int32 count. This keeps the
// wire format identical across every WorkMsg/TokenMsg field regardless of
// which third-party codec might otherwise be available, which matters
// because both ends must agree byte-for-byte without a shared schema
// registry.
var order = binary.BigEndian

func writeFrame(w io.Writer, tag MsgTag) error {
	_, err := w.Write([]byte{byte(tag)})
	return err
}

func readTag(r io.Reader) (MsgTag, error) {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return MsgTag(b[0]), nil
}

func encodeWork(w io.Writer, msg WorkMsg) error {
	if err := writeFrame(w, TagWORK); err != nil {
		return err
	}
	fields := []int32{int32(msg.Length), int32(msg.Index)}
	for _, f := range fields {
		if err := binary.Write(w, order, f); err != nil {
			return err
		}
	}
	if err := binary.Write(w, order, msg.Cost); err != nil {
		return err
	}
	if err := binary.Write(w, order, msg.Bound); err != nil {
		return err
	}
	if err := binary.Write(w, order, int32(len(msg.Tour))); err != nil {
		return err
	}
	for _, city := range msg.Tour {
		if err := binary.Write(w, order, int32(city)); err != nil {
			return err
		}
	}
	return nil
}

func decodeWork(r io.Reader) (WorkMsg, error) {
	var msg WorkMsg
	var length, index int32
	if err := binary.Read(r, order, &length); err != nil {
		return msg, err
	}
	if err := binary.Read(r, order, &index); err != nil {
		return msg, err
	}
	if err := binary.Read(r, order, &msg.Cost); err != nil {
		return msg, err
	}
	if err := binary.Read(r, order, &msg.Bound); err != nil {
		return msg, err
	}
	var tourLen int32
	if err := binary.Read(r, order, &tourLen); err != nil {
		return msg, err
	}
	if tourLen < 0 || tourLen > 1<<20 {
		return msg, fmt.Errorf("coord: implausible tour length %d on wire", tourLen)
	}
	msg.Length = int(length)
	msg.Index = int(index)
	msg.Tour = make([]int, tourLen)
	for i := range msg.Tour {
		var city int32
		if err := binary.Read(r, order, &city); err != nil {
			return msg, err
		}
		msg.Tour[i] = int(city)
	}
	return msg, nil
}

func encodeToken(w io.Writer, msg TokenMsg) error {
	if err := writeFrame(w, TagTOKEN); err != nil {
		return err
	}
	if err := binary.Write(w, order, int32(len(msg.Paused))); err != nil {
		return err
	}
	for _, p := range msg.Paused {
		var b byte
		if p {
			b = 1
		}
		if err := binary.Write(w, order, b); err != nil {
			return err
		}
	}
	if err := binary.Write(w, order, int32(msg.Stage)); err != nil {
		return err
	}
	if err := binary.Write(w, order, msg.GBest); err != nil {
		return err
	}
	return binary.Write(w, order, int32(msg.NotedRank))
}

func decodeToken(r io.Reader) (TokenMsg, error) {
	var msg TokenMsg
	var pausedLen int32
	if err := binary.Read(r, order, &pausedLen); err != nil {
		return msg, err
	}
	if pausedLen < 0 || pausedLen > 1<<16 {
		return msg, fmt.Errorf("coord: implausible paused-vector length %d on wire", pausedLen)
	}
	msg.Paused = make([]bool, pausedLen)
	for i := range msg.Paused {
		var b byte
		if err := binary.Read(r, order, &b); err != nil {
			return msg, err
		}
		msg.Paused[i] = b != 0
	}
	var stage, noted int32
	if err := binary.Read(r, order, &stage); err != nil {
		return msg, err
	}
	if err := binary.Read(r, order, &msg.GBest); err != nil {
		return msg, err
	}
	if err := binary.Read(r, order, &noted); err != nil {
		return msg, err
	}
	msg.Stage = int(stage)
	msg.NotedRank = int(noted)
	return msg, nil
}
