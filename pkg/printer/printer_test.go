package printer

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"net"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lines(data []byte) []string {
	var out []string
	for _, l := range bytes.Split(data, []byte{LF}) {
		out = append(out, string(l))
	}
	return out
}

func TestDocument_ItemLineKeepsTotal(t *testing.T) {
	doc := NewDocument(24)
	doc.ItemLine(12, "Amoxicillin 500mg capsules", "1234.50")

	got := lines(doc.Bytes())
	line := strings.TrimPrefix(got[0], string([]byte{ESC, '@'}))
	assert.Len(t, []rune(line), 24)
	assert.True(t, strings.HasPrefix(line, "12x Amoxicil"))
	assert.True(t, strings.HasSuffix(line, " 1234.50"))
}

func TestDocument_KeyValue(t *testing.T) {
	doc := NewDocument(20)
	doc.KeyValue("TOTAL:", "212.40")
	line := strings.TrimPrefix(lines(doc.Bytes())[0], string([]byte{ESC, '@'}))
	assert.Equal(t, "TOTAL:        212.40", line)
}

func TestNew(t *testing.T) {
	p, err := New("none", "")
	require.NoError(t, err)
	assert.ErrorIs(t, p.Print(context.Background(), []byte("x")), ErrNotConfigured)

	_, err = New("usb", "")
	assert.Error(t, err)
	_, err = New("bluetooth", "x")
	assert.Error(t, err)
}

func TestNetworkPrinter_Print(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	received := make(chan []byte, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		data, _ := io.ReadAll(bufio.NewReader(conn))
		received <- data
	}()

	p := NewNetworkPrinter(ln.Addr().String())
	require.NoError(t, p.Print(context.Background(), []byte("receipt")))
	assert.Equal(t, []byte("receipt"), <-received)
}
