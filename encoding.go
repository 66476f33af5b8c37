package termrender

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"sync"
)

// bufPool recycles the scratch buffers used to encode graphics payloads;
// animations encode one payload per frame.
var bufPool = sync.Pool{
	New: func() any { return new(bytes.Buffer) },
}

func getBuf() *bytes.Buffer {
	buf := bufPool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

func putBuf(buf *bytes.Buffer) {
	// Oversized buffers are dropped rather than pinned in the pool.
	if buf.Cap() <= 1<<20 {
		bufPool.Put(buf)
	}
}

// encodePNGBase64 returns img encoded as base64 PNG, the payload format of
// the Kitty and iTerm2 graphics protocols.
func encodePNGBase64(img image.Image) (string, error) {
	buf := getBuf()
	defer putBuf(buf)

	if err := png.Encode(buf, img); err != nil {
		return "", fmt.Errorf("encoding png: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// chunkPayload splits an encoded payload into chunks of at most size bytes.
// Graphics protocols cap the length of a single escape sequence.
func chunkPayload(payload string, size int) []string {
	if len(payload) <= size {
		return []string{payload}
	}
	chunks := make([]string, 0, (len(payload)+size-1)/size)
	for len(payload) > size {
		chunks = append(chunks, payload[:size])
		payload = payload[size:]
	}
	return append(chunks, payload)
}
