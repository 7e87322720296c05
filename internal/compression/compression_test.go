package compression

import (
	"bytes"
	"io"
	"strings"
	"testing"
)

func TestForPath(t *testing.T) {
	tests := []struct {
		path string
		want Algorithm
	}{
		{"data/processed_energy_data_long.csv", None},
		{"data/processed_energy_data_long.csv.sz", Snappy},
		{"DATA.CSV.SZ", Snappy},
		{"archive.sz.csv", None},
		{"data/long.csv.zst", Zstd},
		{"data/long.csv.LZ4", LZ4},
		{"", None},
	}

	for _, tt := range tests {
		if got := ForPath(tt.path); got != tt.want {
			t.Errorf("ForPath(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestAlgorithm_String(t *testing.T) {
	if None.String() != "none" || Snappy.String() != "snappy" {
		t.Errorf("unexpected names %s, %s", None, Snappy)
	}
	if Zstd.String() != "zstd" || LZ4.String() != "lz4" {
		t.Errorf("unexpected names %s, %s", Zstd, LZ4)
	}
	if Algorithm(9).String() != "Algorithm(9)" {
		t.Errorf("unexpected name for unknown algorithm: %s", Algorithm(9))
	}
}

func roundTrip(t *testing.T, algo Algorithm, original []byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	w, err := NewWriter(&buf, algo)
	if err != nil {
		t.Fatalf("NewWriter failed: %v", err)
	}
	if _, err := w.Write(original); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	r, err := NewReader(&buf, algo)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer r.Close()
	decoded, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	return decoded
}

func TestSnappyStream_RoundTrip(t *testing.T) {
	original := []byte("Indicator,Year,Value\nElectric power consumption (kWh per capita),2000,10.5\n")

	if got := roundTrip(t, Snappy, original); !bytes.Equal(got, original) {
		t.Errorf("Decoded data does not match original.\nOriginal: %s\nDecoded: %s", original, got)
	}
}

func TestSnappyStream_LargeData(t *testing.T) {
	// Larger than one snappy frame
	original := []byte(strings.Repeat("Access to electricity (% of population),1990,42.125\n", 5000))

	got := roundTrip(t, Snappy, original)
	if !bytes.Equal(got, original) {
		t.Error("Decoded large data does not match original")
	}
}

func TestSnappyStream_EmptyData(t *testing.T) {
	if got := roundTrip(t, Snappy, nil); len(got) != 0 {
		t.Errorf("Expected empty output, got %d bytes", len(got))
	}
}

func TestNoneStream_PassThrough(t *testing.T) {
	original := []byte("Year,Value\n2000,1\n")
	if got := roundTrip(t, None, original); !bytes.Equal(got, original) {
		t.Errorf("Pass-through changed data: %q", got)
	}
}

func TestSnappyStream_InvalidData(t *testing.T) {
	r, err := NewReader(bytes.NewReader([]byte{0xFF, 0xFF, 0xFF, 0xFF}), Snappy)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	if _, err := io.ReadAll(r); err == nil {
		t.Error("Expected error when decoding invalid data, got nil")
	}
}

func TestUnsupportedAlgorithm(t *testing.T) {
	if _, err := NewReader(bytes.NewReader(nil), Algorithm(7)); err == nil {
		t.Error("Expected error for unsupported reader algorithm")
	}
	if _, err := NewWriter(io.Discard, Algorithm(7)); err == nil {
		t.Error("Expected error for unsupported writer algorithm")
	}
}

func TestStreams_RoundTrip(t *testing.T) {
	original := []byte(strings.Repeat("Electric power consumption (kWh per capita),2005,1234.5\n", 2000))

	for _, algo := range []Algorithm{Zstd, LZ4} {
		t.Run(algo.String(), func(t *testing.T) {
			if got := roundTrip(t, algo, original); !bytes.Equal(got, original) {
				t.Errorf("%s: decoded data does not match original", algo)
			}
		})
	}
}

func TestZstdStream_InvalidData(t *testing.T) {
	r, err := NewReader(bytes.NewReader([]byte("not a zstd frame")), Zstd)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer r.Close()
	if _, err := io.ReadAll(r); err == nil {
		t.Error("Expected error when decoding invalid zstd data, got nil")
	}
}
