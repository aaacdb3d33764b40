package wire

import (
	"bytes"
	"testing"
)

func TestCodecRoundTrip(t *testing.T) {
	c := Codec{}

	in := &SwapRequest{Index: 3, Value: []byte("payload")}
	data, err := c.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	out := new(SwapRequest)
	if err := c.Unmarshal(data, out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Index != 3 || !bytes.Equal(out.Value, []byte("payload")) {
		t.Fatalf("round trip mismatch: %+v", out)
	}
}

func TestCodecName(t *testing.T) {
	if (Codec{}).Name() != CodecName {
		t.Fatal("codec name mismatch")
	}
}
