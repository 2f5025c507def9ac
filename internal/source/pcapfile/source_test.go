package pcapfile

import (
	"context"
	"encoding/binary"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spyglass-tools/spyglass/internal/source"
)

const (
	serverIP   = "10.0.0.5"
	serverPort = 9000
	clientIP   = "192.168.1.10"
	clientPort = 40000
)

// writePcap builds a capture file with one UDP datagram per payload,
// alternating endpoints per the from-server flags.
func writePcap(t *testing.T, datagrams []testDatagram) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "session.pcap")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := pcapgo.NewWriter(f)
	require.NoError(t, w.WriteFileHeader(65536, layers.LinkTypeEthernet))

	for i, dg := range datagrams {
		srcIP, dstIP := net.ParseIP(clientIP), net.ParseIP(serverIP)
		srcPort, dstPort := layers.UDPPort(clientPort), layers.UDPPort(serverPort)
		if dg.fromServer {
			srcIP, dstIP = dstIP, srcIP
			srcPort, dstPort = dstPort, srcPort
		}

		eth := &layers.Ethernet{
			SrcMAC:       net.HardwareAddr{0x02, 0, 0, 0, 0, 1},
			DstMAC:       net.HardwareAddr{0x02, 0, 0, 0, 0, 2},
			EthernetType: layers.EthernetTypeIPv4,
		}
		ip := &layers.IPv4{
			Version: 4, TTL: 64, Protocol: layers.IPProtocolUDP,
			SrcIP: srcIP, DstIP: dstIP,
		}
		udp := &layers.UDP{SrcPort: srcPort, DstPort: dstPort}
		require.NoError(t, udp.SetNetworkLayerForChecksum(ip))

		buf := gopacket.NewSerializeBuffer()
		opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
		require.NoError(t, gopacket.SerializeLayers(buf, opts, eth, ip, udp, gopacket.Payload(dg.payload)))

		ci := gopacket.CaptureInfo{
			Timestamp:     time.Unix(1700000000+int64(i), 0),
			CaptureLength: len(buf.Bytes()),
			Length:        len(buf.Bytes()),
		}
		require.NoError(t, w.WritePacket(ci, buf.Bytes()))
	}
	return path
}

type testDatagram struct {
	payload    []byte
	fromServer bool
}

func framed(opcode uint16, body []byte) []byte {
	out := binary.LittleEndian.AppendUint16(nil, opcode)
	return append(out, body...)
}

func collect(t *testing.T, cfg Config) []source.Message {
	t.Helper()
	src, err := New(cfg)
	require.NoError(t, err)

	var got []source.Message
	require.NoError(t, src.Run(context.Background(), func(m source.Message) {
		got = append(got, m)
	}))
	return got
}

func TestRunEmitsFramedMessagesWithDirection(t *testing.T) {
	path := writePcap(t, []testDatagram{
		{payload: framed(513, []byte("hello")), fromServer: true},
		{payload: framed(8732, []byte{1, 2, 3, 4}), fromServer: false},
	})

	got := collect(t, Config{Path: path, ServerIP: serverIP, ServerPort: serverPort})

	require.Len(t, got, 2)
	assert.Equal(t, uint32(513), got[0].Opcode)
	assert.Equal(t, []byte("hello"), got[0].Payload)
	assert.Equal(t, source.DirectionInbound, got[0].Direction)
	assert.False(t, got[0].Timestamp.IsZero())

	assert.Equal(t, uint32(8732), got[1].Opcode)
	assert.Equal(t, source.DirectionOutbound, got[1].Direction)
}

func TestRunSkipsUnrelatedAndShortDatagrams(t *testing.T) {
	path := writePcap(t, []testDatagram{
		{payload: []byte{0x01}, fromServer: true},    // too short for an opcode
		{payload: framed(7, nil), fromServer: false}, // valid, empty payload
	})

	// point the source at a different server: nothing matches
	none := collect(t, Config{Path: path, ServerIP: "10.9.9.9", ServerPort: serverPort})
	assert.Empty(t, none)

	got := collect(t, Config{Path: path, ServerIP: serverIP, ServerPort: serverPort})
	require.Len(t, got, 1)
	assert.Equal(t, uint32(7), got[0].Opcode)
	assert.Empty(t, got[0].Payload)
}

func TestNewValidatesConfig(t *testing.T) {
	_, err := New(Config{ServerIP: serverIP})
	assert.Error(t, err)

	_, err = New(Config{Path: "x.pcap", ServerIP: "not-an-ip"})
	assert.Error(t, err)
}

func TestRunMissingFile(t *testing.T) {
	src, err := New(Config{Path: filepath.Join(t.TempDir(), "nope.pcap"), ServerIP: serverIP, ServerPort: serverPort})
	require.NoError(t, err)
	assert.Error(t, src.Run(context.Background(), func(source.Message) {}))
}
