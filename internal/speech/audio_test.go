package speech

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestEncodeWAV_Header(t *testing.T) {
	pcm := []byte{0x01, 0x02, 0x03, 0x04}
	wav := EncodeWAV(pcm, 16000, 1)

	if !bytes.HasPrefix(wav, []byte("RIFF")) {
		t.Fatalf("missing RIFF magic")
	}
	if got := string(wav[8:12]); got != "WAVE" {
		t.Fatalf("expected WAVE, got %q", got)
	}
	if got := binary.LittleEndian.Uint32(wav[4:8]); got != uint32(36+len(pcm)) {
		t.Fatalf("bad RIFF size %d", got)
	}
	if got := binary.LittleEndian.Uint16(wav[22:24]); got != 1 {
		t.Fatalf("bad channel count %d", got)
	}
	if got := binary.LittleEndian.Uint32(wav[24:28]); got != 16000 {
		t.Fatalf("bad sample rate %d", got)
	}
	if got := binary.LittleEndian.Uint32(wav[28:32]); got != 32000 {
		t.Fatalf("bad byte rate %d", got)
	}
	if got := binary.LittleEndian.Uint32(wav[40:44]); got != uint32(len(pcm)) {
		t.Fatalf("bad data size %d", got)
	}
	if !bytes.Equal(wav[44:], pcm) {
		t.Fatalf("payload mismatch")
	}
}

func TestMonoToStereo16(t *testing.T) {
	mono := []byte{0x01, 0x02, 0x03, 0x04}
	want := []byte{0x01, 0x02, 0x01, 0x02, 0x03, 0x04, 0x03, 0x04}
	if got := monoToStereo16(mono); !bytes.Equal(got, want) {
		t.Fatalf("got % x, want % x", got, want)
	}
}

func TestResampleStereo16(t *testing.T) {
	// two stereo frames at 12 kHz become four at 24 kHz
	in := []byte{1, 0, 1, 0, 2, 0, 2, 0}
	out := resampleStereo16(in, 12000, 24000)
	if len(out) != 16 {
		t.Fatalf("expected 4 frames, got %d bytes", len(out))
	}
	if !bytes.Equal(out[0:4], in[0:4]) || !bytes.Equal(out[12:16], in[4:8]) {
		t.Fatalf("unexpected frame mapping: % x", out)
	}

	if got := resampleStereo16(in, 24000, 24000); !bytes.Equal(got, in) {
		t.Fatalf("same-rate input must pass through unchanged")
	}
}

func TestToDeviceFormat_MonoPCMStereoified(t *testing.T) {
	pcm := []byte{0x10, 0x00, 0x20, 0x00}
	out, err := toDeviceFormat(pcm, Format{Encoding: "pcm_s16le", SampleRate: playbackSampleRate, Channels: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != len(pcm)*2 {
		t.Fatalf("expected stereo widening, got %d bytes", len(out))
	}
}

func TestToDeviceFormat_RejectsUnknownEncoding(t *testing.T) {
	if _, err := toDeviceFormat([]byte{1}, Format{Encoding: "opus"}); err == nil {
		t.Fatal("expected error for unsupported encoding")
	}
}
