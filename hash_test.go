package custody

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
)

func TestKeccak256(t *testing.T) {
	cases := map[string]struct {
		data [][]byte
		want string
	}{
		"empty input": {
			want: "c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470",
		},
		"single chunk": {
			data: [][]byte{[]byte("hello")},
			want: "1c8aff950685c2ed4bc3174f3472287b56d9517b9c948127319a09a7a36deac8",
		},
		"chunks are concatenated": {
			data: [][]byte{[]byte("hel"), []byte("lo")},
			want: "1c8aff950685c2ed4bc3174f3472287b56d9517b9c948127319a09a7a36deac8",
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			got := Keccak256(tc.data...)
			if hex.EncodeToString(got) != tc.want {
				t.Fatalf("unexpected digest: %x", got)
			}
			if want := crypto.Keccak256(tc.data...); !bytes.Equal(want, got) {
				t.Fatalf("digest differs from go-ethereum: %x != %x", want, got)
			}
		})
	}
}
