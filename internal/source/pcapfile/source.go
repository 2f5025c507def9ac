// Package pcapfile feeds messages from a pcap capture file. It is the
// offline Source used for replaying recorded sessions; the frames it
// understands are UDP datagrams carrying a 2-byte little-endian opcode
// followed by the message payload.
package pcapfile

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"os"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"

	"github.com/spyglass-tools/spyglass/internal/log"
	"github.com/spyglass-tools/spyglass/internal/source"
)

// Config locates the capture file and the server endpoint used to tag
// message direction.
type Config struct {
	Path       string `mapstructure:"path" yaml:"path"`
	ServerIP   string `mapstructure:"server_ip" yaml:"server_ip"`
	ServerPort uint16 `mapstructure:"server_port" yaml:"server_port"`
}

type Source struct {
	cfg      Config
	serverIP net.IP
}

func New(cfg Config) (*Source, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("pcapfile: path is required")
	}
	ip := net.ParseIP(cfg.ServerIP)
	if ip == nil {
		return nil, fmt.Errorf("pcapfile: invalid server_ip %q", cfg.ServerIP)
	}
	return &Source{cfg: cfg, serverIP: ip}, nil
}

// Run replays the capture file. Datagrams that do not involve the
// configured server endpoint, or are too short to carry an opcode, are
// skipped silently — a capture file routinely contains unrelated
// traffic.
func (s *Source) Run(ctx context.Context, emit func(source.Message)) error {
	f, err := os.Open(s.cfg.Path)
	if err != nil {
		return fmt.Errorf("pcapfile: open %s: %w", s.cfg.Path, err)
	}
	defer f.Close()

	reader, err := pcapgo.NewReader(f)
	if err != nil {
		return fmt.Errorf("pcapfile: read header of %s: %w", s.cfg.Path, err)
	}

	count := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		data, ci, err := reader.ReadPacketData()
		if errors.Is(err, io.EOF) {
			log.GetLogger().Infof("pcap replay finished: %d messages from %s", count, s.cfg.Path)
			return nil
		}
		if err != nil {
			return fmt.Errorf("pcapfile: read packet: %w", err)
		}

		msg, ok := s.frame(data, reader.LinkType())
		if !ok {
			continue
		}
		msg.Timestamp = ci.Timestamp
		emit(msg)
		count++
	}
}

// frame extracts one message from a captured packet, deciding direction
// by whether the server endpoint is the datagram's source or
// destination.
func (s *Source) frame(data []byte, linkType layers.LinkType) (source.Message, bool) {
	packet := gopacket.NewPacket(data, linkType, gopacket.Default)

	udpLayer := packet.Layer(layers.LayerTypeUDP)
	if udpLayer == nil {
		return source.Message{}, false
	}
	udp := udpLayer.(*layers.UDP)

	var srcIP, dstIP net.IP
	if ip4, ok := packet.Layer(layers.LayerTypeIPv4).(*layers.IPv4); ok {
		srcIP, dstIP = ip4.SrcIP, ip4.DstIP
	} else if ip6, ok := packet.Layer(layers.LayerTypeIPv6).(*layers.IPv6); ok {
		srcIP, dstIP = ip6.SrcIP, ip6.DstIP
	} else {
		return source.Message{}, false
	}

	serverPort := layers.UDPPort(s.cfg.ServerPort)
	var dir source.Direction
	switch {
	case srcIP.Equal(s.serverIP) && udp.SrcPort == serverPort:
		dir = source.DirectionInbound
	case dstIP.Equal(s.serverIP) && udp.DstPort == serverPort:
		dir = source.DirectionOutbound
	default:
		return source.Message{}, false
	}

	payload := udp.Payload
	if len(payload) < 2 {
		return source.Message{}, false
	}

	return source.Message{
		Opcode:    uint32(binary.LittleEndian.Uint16(payload[:2])),
		Payload:   payload[2:],
		Direction: dir,
	}, true
}
