package main

import (
	"flag"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	zpng "github.com/thecaptury/Zpng"
)

// sharedDict is the externally trained dictionary from -dict, if any.
var sharedDict *zpng.Dictionary

func main() {
	batch := flag.Bool("batch", false, "encode/decode inputs concurrently, one codec instance per worker")
	video := flag.Bool("video", false, "treat inputs as consecutive frames and delta-code them")
	dictPath := flag.String("dict", "", "zstd dictionary trained externally (zstd --train) to apply")
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, "Encode: zpng [-batch|-video] [-dict file] <image>...\nDecode: zpng [-batch|-video] [-dict file] <input.zpng>...\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	level := slog.LevelInfo
	if os.Getenv("DEBUG") != "" {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(1)
	}
	if *dictPath != "" {
		if *batch {
			// A dictionary is pinned to one goroutine at a time.
			slog.Error("-dict cannot be combined with -batch")
			os.Exit(1)
		}
		raw, err := os.ReadFile(*dictPath)
		if err != nil {
			slog.Error("failed to read dictionary", "error", err)
			os.Exit(1)
		}
		d, err := zpng.NewDictionary(raw)
		if err != nil {
			slog.Error("failed to load dictionary", "error", err)
			os.Exit(1)
		}
		defer d.Close()
		sharedDict = d
	}

	var err error
	switch {
	case *video:
		err = runVideo(args)
	case *batch:
		err = runBatch(args)
	default:
		for _, path := range args {
			if err = runOne(path); err != nil {
				break
			}
		}
	}
	if err != nil {
		slog.Error("failed", "error", err)
		os.Exit(1)
	}
}

func isEncoded(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".zpng")
}

func runOne(path string) error {
	if isEncoded(path) {
		return decodeFile(path)
	}
	return encodeFile(path)
}

// runBatch fans the inputs out over independent workers. Codec
// instances are single-threaded, so every worker gets its own.
func runBatch(paths []string) error {
	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for _, path := range paths {
		path := path
		g.Go(func() error {
			return runOne(path)
		})
	}
	return g.Wait()
}

// runVideo codes the inputs as one frame sequence: the first frame is
// intra, every later frame a delta against the previous one. Frames
// whose shape differs from their predecessor fall back to intra.
func runVideo(paths []string) error {
	if isEncoded(paths[0]) {
		return decodeSequence(paths)
	}
	return encodeSequence(paths)
}

func encodeSequence(paths []string) error {
	enc := zpng.NewEncoder()
	defer enc.Close()
	enc.SetDictionary(sharedDict)

	var prev *zpng.ImageData
	for _, path := range paths {
		img, err := loadImage(path)
		if err != nil {
			return err
		}
		desc := zpng.FromImage(img)

		ref := prev
		if ref != nil && (ref.Width != desc.Width || ref.Height != desc.Height ||
			ref.Channels != desc.Channels || ref.BytesPerChannel != desc.BytesPerChannel) {
			slog.Warn("frame shape changed, coding intra", "file", path)
			ref = nil
		}

		buf, err := enc.EncodeVideo(ref, desc)
		if err != nil {
			return fmt.Errorf("encode %s: %w", path, err)
		}
		out := outputPath(path, ".zpng")
		if err := os.WriteFile(out, buf, 0o644); err != nil {
			return err
		}
		slog.Info("encoded", "in", path, "out", out, "bytes", len(buf), "intra", ref == nil)
		prev = desc
	}
	return nil
}

func decodeSequence(paths []string) error {
	dec := zpng.NewDecoder()
	defer dec.Close()
	dec.SetDictionary(sharedDict)

	var prev *zpng.ImageData
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		desc, err := dec.DecodeVideo(prev, data)
		if err != nil {
			return fmt.Errorf("decode %s: %w", path, err)
		}
		if err := writePNG(outputPath(path, ".png"), desc); err != nil {
			return err
		}
		slog.Info("decoded", "in", path, "intra", desc.IsIFrame)
		prev = desc
	}
	return nil
}

func encodeFile(path string) error {
	img, err := loadImage(path)
	if err != nil {
		return err
	}
	desc := zpng.FromImage(img)
	var buf []byte
	if sharedDict != nil {
		enc := zpng.NewEncoder()
		defer enc.Close()
		enc.SetDictionary(sharedDict)
		buf, err = enc.Encode(desc)
	} else {
		buf, err = zpng.Compress(desc)
	}
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	out := outputPath(path, ".zpng")
	if err := os.WriteFile(out, buf, 0o644); err != nil {
		return err
	}
	slog.Info("encoded", "in", path, "out", out, "bytes", len(buf))
	return nil
}

func decodeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var desc *zpng.ImageData
	if sharedDict != nil {
		dec := zpng.NewDecoder()
		defer dec.Close()
		dec.SetDictionary(sharedDict)
		desc, err = dec.Decode(data)
	} else {
		desc, err = zpng.Decompress(data)
	}
	if err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	out := outputPath(path, ".png")
	if err := writePNG(out, desc); err != nil {
		return err
	}
	slog.Info("decoded", "in", path, "out", out)
	return nil
}

func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

func writePNG(path string, desc *zpng.ImageData) error {
	img, err := desc.Image()
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

func outputPath(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}
