// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package gc

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/bytebufferpool"
)

var _ Buffer = (*bytebufferpool.ByteBuffer)(nil)

func TestBuffer(t *testing.T) {
	tests := []struct {
		name     string
		testFunc func(t *testing.T)
	}{
		{
			name: "Write Methods",
			testFunc: func(t *testing.T) {
				buf := Default.Get()
				defer func() {
					buf.Reset()
					Default.Put(buf)
				}()

				_, _ = buf.WriteString("-----BEGIN ")
				_, _ = buf.Write([]byte("X509 CRL"))
				require.NoError(t, buf.WriteByte('-'))
				assert.Equal(t, "-----BEGIN X509 CRL-", string(buf.Bytes()))
				assert.Equal(t, 20, buf.Len())
			},
		},
		{
			name: "ReadFrom With Limit",
			testFunc: func(t *testing.T) {
				buf := Default.Get()
				defer func() {
					buf.Reset()
					Default.Put(buf)
				}()

				n, err := buf.ReadFrom(io.LimitReader(strings.NewReader("0123456789"), 4))
				require.NoError(t, err)
				assert.Equal(t, int64(4), n)
				assert.Equal(t, "0123", string(buf.Bytes()))
			},
		},
		{
			name: "ReadFrom Error",
			testFunc: func(t *testing.T) {
				buf := Default.Get()
				defer func() {
					buf.Reset()
					Default.Put(buf)
				}()

				boom := errors.New("connection reset")
				_, err := buf.ReadFrom(&errorReader{err: boom})
				assert.ErrorIs(t, err, boom)
			},
		},
		{
			name: "JSON Encode Then WriteTo",
			testFunc: func(t *testing.T) {
				buf := Default.Get()
				defer func() {
					buf.Reset()
					Default.Put(buf)
				}()

				require.NoError(t, json.NewEncoder(buf).Encode(map[string]string{"level": "info"}))
				var out bytes.Buffer
				_, err := buf.WriteTo(&out)
				require.NoError(t, err)
				assert.Equal(t, "{\"level\":\"info\"}\n", out.String())
			},
		},
		{
			name: "Reset Clears Contents",
			testFunc: func(t *testing.T) {
				buf := Default.Get()
				_, _ = buf.WriteString("sensitive")
				buf.Reset()
				assert.Zero(t, buf.Len())
				Default.Put(buf)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, tt.testFunc)
	}
}

func TestPool(t *testing.T) {
	tests := []struct {
		name     string
		testFunc func(t *testing.T)
	}{
		{
			name: "Get After Put Is Empty",
			testFunc: func(t *testing.T) {
				p := New()
				buf := p.Get()
				require.NotNil(t, buf)
				_, _ = buf.WriteString("data")
				buf.Reset()
				p.Put(buf)

				again := p.Get()
				assert.Zero(t, again.Len())
				p.Put(again)
			},
		},
		{
			name: "Put Foreign Buffer",
			testFunc: func(t *testing.T) {
				p := New()
				assert.NotPanics(t, func() { p.Put(&mockBuffer{buf: bytes.NewBuffer(nil)}) })
			},
		},
		{
			name: "Concurrent Use",
			testFunc: func(t *testing.T) {
				var wg sync.WaitGroup
				for g := range 32 {
					wg.Add(1)
					go func() {
						defer wg.Done()
						for range 200 {
							buf := Default.Get()
							_, _ = buf.WriteString("worker ")
							_ = buf.WriteByte(byte('0' + g%10))
							assert.Equal(t, 8, buf.Len())
							buf.Reset()
							Default.Put(buf)
						}
					}()
				}
				wg.Wait()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, tt.testFunc)
	}
}
