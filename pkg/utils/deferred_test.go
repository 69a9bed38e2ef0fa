package utils

import (
	"bytes"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeferredWriter_FlushReplaysInOrder(t *testing.T) {
	var w DeferredWriter

	_, err := w.Write([]byte("{\"level\":\"info\"}\n"))
	require.NoError(t, err)
	_, err = w.Write([]byte("{\"level\":\"warn\"}\n"))
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, w.Flush(&out))
	assert.Equal(t, "{\"level\":\"info\"}\n{\"level\":\"warn\"}\n", out.String())
}

func TestDeferredWriter_FlushResets(t *testing.T) {
	var w DeferredWriter

	_, _ = w.Write([]byte("once\n"))

	var out bytes.Buffer
	require.NoError(t, w.Flush(&out))

	out.Reset()
	require.NoError(t, w.Flush(&out))
	assert.Zero(t, out.Len())
}

func TestDeferredWriter_ConcurrentWrites(t *testing.T) {
	var w DeferredWriter

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = w.Write([]byte("line\n"))
		}()
	}
	wg.Wait()

	var out bytes.Buffer
	require.NoError(t, w.Flush(&out))
	assert.Equal(t, 10, bytes.Count(out.Bytes(), []byte("\n")))
}
