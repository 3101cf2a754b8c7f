package jsonurl_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/creachadair/jsonurl"
	"github.com/creachadair/jsonurl/ast"
)

// benchInput synthesizes an array of n record objects that fits inside
// the default parse limits.
func benchInput(n int) string {
	var sb strings.Builder
	sb.WriteByte('(')
	for i := 0; i < n; i++ {
		if i > 0 {
			sb.WriteByte(',')
		}
		fmt.Fprintf(&sb, "(id:%d,name:'user+%d',tags:(a,b,c),score:%d.5,ok:true,note:null)",
			i, i, i%10)
	}
	sb.WriteByte(')')
	return sb.String()
}

func BenchmarkScanner(b *testing.B) {
	input := benchInput(200)
	b.Logf("Benchmark input: %d bytes", len(input))

	b.Run("Events", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			sc := jsonurl.NewScanner(input, nil)
			for {
				ev, err := sc.Next()
				if err != nil {
					b.Fatalf("Unexpected error: %v", err)
				} else if ev == jsonurl.EndStream {
					break
				}

				// Realize string and number values, so the comparison with
				// the full parser is not skewed by lazy decoding.
				switch ev {
				case jsonurl.String, jsonurl.KeyName:
					_ = sc.Text()
				case jsonurl.Number:
					_ = sc.Number().Value()
				}
			}
		}
	})

	b.Run("Parse", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			if _, err := jsonurl.Parse(input, nil); err != nil {
				b.Fatalf("Unexpected error: %v", err)
			}
		}
	})

	b.Run("Tree", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			if _, err := ast.Parse(input, nil); err != nil {
				b.Fatalf("Unexpected error: %v", err)
			}
		}
	})
}

func BenchmarkMarshal(b *testing.B) {
	input := benchInput(200)

	b.Run("Native", func(b *testing.B) {
		v, err := jsonurl.Parse(input, nil)
		if err != nil {
			b.Fatalf("Parse: %v", err)
		}
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			if _, err := jsonurl.Marshal(v, nil); err != nil {
				b.Fatalf("Unexpected error: %v", err)
			}
		}
	})

	b.Run("Tree", func(b *testing.B) {
		v, err := ast.Parse(input, nil)
		if err != nil {
			b.Fatalf("Parse: %v", err)
		}
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			if _, err := ast.Marshal(v, nil); err != nil {
				b.Fatalf("Unexpected error: %v", err)
			}
		}
	})
}
