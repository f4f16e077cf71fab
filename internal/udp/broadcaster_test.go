package udp

import (
	"errors"
	"net"
	"testing"
)

type fakeConn struct {
	writes   [][]byte
	writeErr error
	closed   bool
}

func (c *fakeConn) Write(p []byte) (int, error) {
	if c.writeErr != nil {
		return 0, c.writeErr
	}
	c.writes = append(c.writes, append([]byte(nil), p...))
	return len(p), nil
}

func (c *fakeConn) Close() error {
	c.closed = true
	return nil
}

const sampleJSON = `{"alpha":90,"beta":0,"gamma":-15,"absolute":false,"all_sensors_active":true}`

func TestNewBroadcaster_DialsResolvedAddr(t *testing.T) {
	var gotNetwork string
	var gotRaddr *net.UDPAddr
	fc := &fakeConn{}

	resolve := func(network, address string) (*net.UDPAddr, error) {
		return net.ResolveUDPAddr(network, address)
	}
	dial := func(network string, laddr, raddr *net.UDPAddr) (udpConn, error) {
		gotNetwork = network
		gotRaddr = raddr
		return fc, nil
	}

	b, err := newBroadcaster("192.168.1.255:45488", resolve, dial)
	if err != nil {
		t.Fatalf("newBroadcaster() error: %v", err)
	}
	defer b.Close()

	if gotNetwork != "udp" {
		t.Fatalf("network=%q want %q", gotNetwork, "udp")
	}
	if gotRaddr == nil || gotRaddr.Port != 45488 || !gotRaddr.IP.Equal(net.IPv4(192, 168, 1, 255)) {
		t.Fatalf("raddr=%v want 192.168.1.255:45488", gotRaddr)
	}
}

func TestNewBroadcaster_ResolveFailure(t *testing.T) {
	resolveErr := errors.New("nope")
	resolve := func(network, address string) (*net.UDPAddr, error) {
		return nil, resolveErr
	}
	dial := func(network string, laddr, raddr *net.UDPAddr) (udpConn, error) {
		return &fakeConn{}, nil
	}

	_, err := newBroadcaster("bad:addr", resolve, dial)
	if !errors.Is(err, resolveErr) {
		t.Fatalf("err=%v want %v", err, resolveErr)
	}
}

func TestBroadcaster_Send_EmptyNoWrite(t *testing.T) {
	fc := &fakeConn{}
	b := &Broadcaster{dest: "x", conn: fc}

	if err := b.Send(nil); err != nil {
		t.Fatalf("Send(nil) error: %v", err)
	}
	if err := b.Send([]byte{}); err != nil {
		t.Fatalf("Send(empty) error: %v", err)
	}
	if len(fc.writes) != 0 {
		t.Fatalf("expected no writes, got %d", len(fc.writes))
	}
}

func TestBroadcaster_Send_OneDatagramPerSample(t *testing.T) {
	fc := &fakeConn{}
	b := &Broadcaster{dest: "x", conn: fc}

	if err := b.Send([]byte(sampleJSON)); err != nil {
		t.Fatalf("Send() error: %v", err)
	}
	if err := b.Send([]byte(sampleJSON)); err != nil {
		t.Fatalf("Send() error: %v", err)
	}
	if len(fc.writes) != 2 {
		t.Fatalf("expected 2 datagrams, got %d", len(fc.writes))
	}
	if string(fc.writes[0]) != sampleJSON {
		t.Fatalf("write=%s want %s", fc.writes[0], sampleJSON)
	}
}

func TestBroadcaster_Send_PropagatesError(t *testing.T) {
	wantErr := errors.New("boom")
	fc := &fakeConn{writeErr: wantErr}
	b := &Broadcaster{dest: "x", conn: fc}

	err := b.Send([]byte(sampleJSON))
	if !errors.Is(err, wantErr) {
		t.Fatalf("err=%v want %v", err, wantErr)
	}
}

func TestBroadcaster_Close(t *testing.T) {
	fc := &fakeConn{}
	b := &Broadcaster{dest: "x", conn: fc}
	if err := b.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if !fc.closed {
		t.Fatalf("conn not closed")
	}

	var nilConn Broadcaster
	if err := nilConn.Close(); err != nil {
		t.Fatalf("Close() on empty broadcaster: %v", err)
	}
}
