package capture

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/pcapgo"
)

// Record is one captured payload.
type Record struct {
	Time    time.Time
	Dir     byte
	Payload []byte
}

// Marker returns the payload's leading marker character.
func (r Record) Marker() byte {
	if len(r.Payload) == 0 {
		return '?'
	}
	return r.Payload[0]
}

type packetSource interface {
	ReadPacketData() (data []byte, ci gopacket.CaptureInfo, err error)
}

func detectFormat(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	header := make([]byte, 4)
	n, err := file.Read(header)
	if err != nil || n < 4 {
		return "pcap", nil
	}

	// Section Header Block magic marks pcapng
	magic := uint32(header[0]) | uint32(header[1])<<8 | uint32(header[2])<<16 | uint32(header[3])<<24
	if magic == 0x0A0D0D0A {
		return "pcapng", nil
	}
	return "pcap", nil
}

// ReadFile decodes a capture written by this package (or any pcap/pcapng
// file whose frames carry a leading direction byte). Frames too short to
// hold a direction byte are skipped.
func ReadFile(path string) ([]Record, error) {
	format, err := detectFormat(path)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var src packetSource
	if format == "pcapng" {
		r, err := pcapgo.NewNgReader(file, pcapgo.DefaultNgReaderOptions)
		if err != nil {
			return nil, fmt.Errorf("capture: open pcapng %s: %w", path, err)
		}
		src = r
	} else {
		r, err := pcapgo.NewReader(file)
		if err != nil {
			return nil, fmt.Errorf("capture: open pcap %s: %w", path, err)
		}
		src = r
	}

	var records []Record
	for {
		data, ci, err := src.ReadPacketData()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("capture: read %s: %w", path, err)
		}
		if len(data) < 1 {
			continue
		}

		payload := make([]byte, len(data)-1)
		copy(payload, data[1:])
		records = append(records, Record{
			Time:    ci.Timestamp,
			Dir:     data[0],
			Payload: payload,
		})
	}

	return records, nil
}
