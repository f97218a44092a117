package main

import (
    "flag"
    "fmt"
    "os"

    "go.uber.org/zap"

    "tvwire/pkg/codec"
    "tvwire/pkg/config"
    "tvwire/pkg/observability"
    "tvwire/pkg/pbbridge"
    "tvwire/pkg/tval"
    "tvwire/pkg/tval/wire"
)

func main() {
    cfgPath := flag.String("config", "", "path to config file (optional)")
    inFile := flag.String("in", "", "framed wire file to dump")
    outFile := flag.String("o", "", "output file (default stdout)")
    format := flag.String("format", "", "export format: json|cbor|proto (default from config)")
    maxDepth := flag.Int("max-depth", -1, "container nesting bound, 0 = unbounded (default from config)")
    flag.Parse()

    if *inFile == "" { fatalf("usage: tvwire-dump -in <file> [-format json|cbor|proto]") }

    cfg, err := config.Load(*cfgPath)
    if err != nil { fatalf("load config: %v", err) }
    logger, err := observability.SetupLogger(cfg.Log)
    if err != nil { fatalf("setup logger: %v", err) }
    defer logger.Sync()

    if *format == "" { *format = cfg.Tool.Format }
    if *maxDepth < 0 { *maxDepth = cfg.Tool.MaxDepth }

    raw, err := os.ReadFile(*inFile)
    if err != nil { fatalf("read %s: %v", *inFile, err) }

    dec := wire.Decoder{MaxDepth: *maxDepth}
    v, err := dec.DecodeFrame(raw)
    if err != nil { fatalf("decode %s: %v", *inFile, err) }
    logger.Info("frame decoded", zap.String("file", *inFile), zap.Int("bytes", len(raw)), zap.Stringer("kind", v.Kind()))

    reg, err := codec.NewRegistry()
    if err != nil { fatalf("codec registry: %v", err) }
    c, err := reg.ForName(*format)
    if err != nil { fatalf("%v", err) }

    var out []byte
    if *format == "proto" {
        pv, err := pbbridge.ToStruct(v)
        if err != nil { fatalf("bridge: %v", err) }
        out, err = c.Marshal(pv)
        if err != nil { fatalf("marshal: %v", err) }
    } else {
        out, err = c.Marshal(exportTree(v))
        if err != nil { fatalf("marshal: %v", err) }
    }

    if *outFile == "" {
        os.Stdout.Write(out)
        if *format == "json" { fmt.Println() }
        return
    }
    if err := os.WriteFile(*outFile, out, 0o644); err != nil { fatalf("write %s: %v", *outFile, err) }
    logger.Info("export written", zap.String("file", *outFile), zap.String("format", *format), zap.Int("bytes", len(out)))
}

// exportTree flattens a value tree into plain Go values for interchange
// codecs. Domain values and unsupported markers become tagged maps; mapping
// order is not preserved by map-based formats.
func exportTree(v tval.Value) any {
    switch v.Kind() {
    case tval.KindNull:
        return nil
    case tval.KindBool:
        b, _ := v.AsBool()
        return b
    case tval.KindInt:
        i, _ := v.AsInt()
        return i
    case tval.KindText:
        s, _ := v.AsText()
        return s
    case tval.KindBytes:
        b, _ := v.AsBytes()
        return b
    case tval.KindDomain:
        name, payload, _ := v.AsDomain()
        out := map[string]any{"@type": name, "payload": payload}
        if ts := v.DomainTimestamp(); ts != 0 { out["ts"] = ts }
        return out
    case tval.KindUnsupported:
        desc, _ := v.Description()
        return map[string]any{"@unsupported": desc}
    case tval.KindSequence:
        elems, _ := v.Elems()
        out := make([]any, len(elems))
        for i, e := range elems { out[i] = exportTree(e) }
        return out
    case tval.KindMapping:
        entries, _ := v.Entries()
        out := make(map[string]any, len(entries))
        for _, e := range entries { out[e.Key] = exportTree(e.Val) }
        return out
    default:
        return nil
    }
}

func fatalf(format string, a ...any) {
    fmt.Fprintf(os.Stderr, format+"\n", a...)
    os.Exit(1)
}
