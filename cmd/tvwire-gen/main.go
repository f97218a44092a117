package main

import (
    "encoding/hex"
    "flag"
    "fmt"
    "os"
    "path/filepath"
    "strings"

    "go.uber.org/zap"

    "tvwire/pkg/config"
    "tvwire/pkg/dict"
    "tvwire/pkg/dtypes"
    "tvwire/pkg/observability"
    "tvwire/pkg/tval/wire"
)

func main() {
    cfgPath := flag.String("config", "", "path to config file (optional)")
    outDir := flag.String("out", "testdata/frames", "output directory for binary frames")
    compress := flag.Bool("compress", false, "also emit a compressed variant")
    flag.Parse()

    cfg, err := config.Load(*cfgPath)
    if err != nil { fatalf("load config: %v", err) }
    logger, err := observability.SetupLogger(cfg.Log)
    if err != nil { fatalf("setup logger: %v", err) }
    defer logger.Sync()

    if err := os.MkdirAll(*outDir, 0o755); err != nil { fatalf("mkdir: %v", err) }

    // 1) Flat scalar dictionary
    d := dict.New()
    mustSet(d, "host", "node-17")
    mustSet(d, "port", int64(7777))
    mustSet(d, "secure", true)
    mustSet(d, "token", []byte{0xde, 0xad, 0xbe, 0xef})
    mustSet(d, "comment", nil)
    writeOut(logger, *outDir, "dict_scalars.bin", d.Bytes())

    // 2) Nested containers with domain-typed leaves
    tags, err := dict.FromSlice([]any{"alpha", "beta", []any{1, 2, 3}})
    if err != nil { fatalf("build tags: %v", err) }
    inner := dict.New()
    mustSet(inner, "created", dtypes.Now())
    mustSet(inner, "source", dtypes.NewURN("aff4:/clients/C.1234/"))
    nested := dict.New()
    mustSet(nested, "meta", inner)
    mustSet(nested, "tags", tags)
    writeOut(logger, *outDir, "dict_nested.bin", nested.Bytes())

    // 3) Element-constrained array, wrapped to pin its creation timestamp
    arr := dict.NewTypedArray("Str")
    for _, s := range []string{"hello", "world", "!"} {
        if err := arr.Append(dtypes.Str(s)); err != nil { fatalf("append: %v", err) }
    }
    emb, err := dict.Wrap(arr)
    if err != nil { fatalf("wrap: %v", err) }
    wrapped := dict.New()
    mustSet(wrapped, "payload", emb)
    mustSet(wrapped, "label", "pinned array")
    writeOut(logger, *outDir, "dict_embedded.bin", wrapped.Bytes())

    if *compress || cfg.Tool.Compress {
        frame := wire.EncodeFrame(nested.AsValue(), wire.FrameOptions{Compress: true})
        writeOut(logger, *outDir, "dict_nested.s2.bin", frame)
    }

    fmt.Println("Generated frames in", *outDir)
}

func mustSet(d *dict.Dict, key string, v any) {
    if err := d.Set(key, v); err != nil { fatalf("set %s: %v", key, err) }
}

func writeOut(logger *zap.Logger, dir, name string, b []byte) {
    p := filepath.Join(dir, name)
    if err := os.WriteFile(p, b, 0o644); err != nil { fatalf("write %s: %v", name, err) }
    logger.Info("frame written", zap.String("file", name), zap.Int("bytes", len(b)))
    fmt.Printf("%-24s %5d bytes  head: %s\n", name, len(b), shortHex(b, 32))
}

func shortHex(b []byte, n int) string {
    if len(b) == 0 { return "" }
    if n > len(b) { n = len(b) }
    enc := hex.EncodeToString(b[:n])
    var out []string
    for i := 0; i < len(enc); i += 4 {
        j := i + 4
        if j > len(enc) { j = len(enc) }
        out = append(out, enc[i:j])
    }
    return strings.Join(out, " ")
}

func fatalf(format string, a ...any) {
    fmt.Fprintf(os.Stderr, format+"\n", a...)
    os.Exit(1)
}
