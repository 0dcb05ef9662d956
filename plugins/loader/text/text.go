package text

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"

	"maxsum/pkg/contract"
)

// Options 为文本 Loader 的可选配置（最小必要）。
type Options struct {
	// BufSize 为读缓冲区大小（字节）。默认 64KiB。
	BufSize int `json:"buf_size"`
	// MaxSize: 序列长度上限；<=0 使用 contract.MaxSize。
	MaxSize int `json:"max_size"`
}

// maxLineBytes: 单行上限（逗号分隔的长行）。
const maxLineBytes = 16 << 20

// Text 从文件或 STDIN 读取十进制整数，分隔符为任意空白或逗号；'#' 起始至行尾为注释。
type Text struct {
	bufSize int
	maxSize int
	// stdin 默认 os.Stdin；可由 SetStdin 替换。
	stdin io.Reader
}

// New 创建文本 Loader。
func New(opts *Options) *Text {
	const defaultBuf = 64 * 1024
	t := &Text{bufSize: defaultBuf, maxSize: contract.MaxSize, stdin: os.Stdin}
	if opts != nil && opts.BufSize > 0 {
		t.bufSize = opts.BufSize
	}
	if opts != nil && opts.MaxSize > 0 && opts.MaxSize < contract.MaxSize {
		t.maxSize = opts.MaxSize
	}
	return t
}

// SetStdin 指定 "-" 对应的输入流。
func (t *Text) SetStdin(r io.Reader) { t.stdin = r }

// Load 依次读取 roots 并拼接为一个序列。
func (t *Text) Load(ctx context.Context, roots []string) (contract.Sequence, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	if len(roots) == 0 || (len(roots) == 1 && roots[0] == "-") {
		return t.parse(ctx, "stdin", t.stdin, nil)
	}
	// 禁止与其他根混用 "-"
	for _, s := range roots {
		if strings.TrimSpace(s) == "-" {
			return nil, fmt.Errorf("%w: stdin '-' cannot be mixed with other roots", contract.ErrInvalidParameter)
		}
	}
	var out contract.Sequence
	for _, root := range roots {
		f, err := os.Open(root)
		if err != nil {
			return nil, err
		}
		out, err = t.parse(ctx, root, f, out)
		_ = f.Close()
		if err != nil {
			return nil, err
		}
	}
	if out == nil {
		out = contract.Sequence{}
	}
	return out, nil
}

func (t *Text) parse(ctx context.Context, name string, r io.Reader, out contract.Sequence) (contract.Sequence, error) {
	sc := bufio.NewScanner(bufio.NewReaderSize(r, t.bufSize))
	sc.Buffer(make([]byte, 0, 4096), maxLineBytes)
	line := 0
	for sc.Scan() {
		line++
		if line%4096 == 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
		}
		s := sc.Text()
		if i := strings.IndexByte(s, '#'); i >= 0 {
			s = s[:i]
		}
		for _, tok := range strings.FieldsFunc(s, isSep) {
			v, err := strconv.ParseInt(tok, 10, 32)
			if err != nil {
				return nil, fmt.Errorf("%w: %s:%d: %q is not a 32-bit integer", contract.ErrInvalidParameter, name, line, tok)
			}
			if len(out) >= t.maxSize {
				return nil, fmt.Errorf("%w: %s: more than %d values", contract.ErrInvalidParameter, name, t.maxSize)
			}
			out = append(out, int32(v))
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if out == nil {
		out = contract.Sequence{}
	}
	return out, nil
}

func isSep(r rune) bool { return r == ',' || unicode.IsSpace(r) }

var _ contract.Loader = (*Text)(nil)
