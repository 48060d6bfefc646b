package dataset

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/parquet-go/parquet-go"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/etude/internal/domain/record"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	return p
}

func TestLoadJSONLines(t *testing.T) {
	Convey("Given a JSON lines file from the extractor", t, func() {
		dir := t.TempDir()
		path := writeFile(t, dir, "scores.jsonl", `
{"file_path":"a.mxl","extraction_status":"success","instruments":"Piano","event_count":120}

{"file_path":"b.mxl","extraction_status":"failed"}
{"id":"c","file_path":"c.mxl","instruments":"Flute","chromatic_ratio":0.25}
`)
		res, err := NewLoader().Load(context.Background(), path)

		Convey("Then successful records load and failed ones are skipped", func() {
			So(err, ShouldBeNil)
			So(res.Records, ShouldHaveLength, 2)
			So(res.Skipped, ShouldEqual, 1)
		})

		Convey("And a missing id defaults to the file path", func() {
			So(res.Records[0].ID, ShouldEqual, "a.mxl")
			So(res.Records[1].ID, ShouldEqual, "c")
		})

		Convey("And absent values stay nil", func() {
			So(res.Records[0].Measures, ShouldBeNil)
			So(*res.Records[0].Events, ShouldEqual, 120)
			So(*res.Records[1].Chromatic, ShouldAlmostEqual, 0.25)
		})
	})

	Convey("Given a malformed line", t, func() {
		path := writeFile(t, t.TempDir(), "bad.jsonl", "{\"id\":\"ok\"}\n{oops\n")
		_, err := NewLoader().Load(context.Background(), path)

		Convey("Then the error names the malformed record", func() {
			So(errors.Is(err, ErrMalformedRecord), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, ":2:")
		})
	})
}

func TestLoadJSONArrayAndYAML(t *testing.T) {
	Convey("Given a JSON array and a YAML list", t, func() {
		dir := t.TempDir()
		jsonPath := writeFile(t, dir, "scores.json", `[{"id":"j1","instruments":"Harp"},{"id":"j2"}]`)
		yamlPath := writeFile(t, dir, "scores.yaml", `
- id: y1
  instruments: Violin
  event_count: 300
  has_vocal: false
- file_path: y2.mxl
  extraction_status: FAILED
`)
		l := NewLoader()

		Convey("Then both load", func() {
			res, err := l.LoadAll(context.Background(), []string{jsonPath, yamlPath})
			So(err, ShouldBeNil)
			So(res.Records, ShouldHaveLength, 3)
			So(res.Skipped, ShouldEqual, 1)
			So(res.Records[2].InstrumentList, ShouldEqual, "Violin")
			So(*res.Records[2].Vocal, ShouldBeFalse)
		})
	})
}

func TestLoadParquet(t *testing.T) {
	Convey("Given a Parquet file", t, func() {
		path := filepath.Join(t.TempDir(), "scores.parquet")
		rows := []record.Score{
			{ID: "p1", InstrumentList: "Piano", Events: record.Int64(100), Duration: record.Float64(30)},
			{FilePath: "p2.mxl", ExtractionStatus: "failed"},
			{FilePath: "p3.mxl", InstrumentList: "Guitar"},
		}
		So(parquet.WriteFile(path, rows), ShouldBeNil)

		res, err := NewLoader().Load(context.Background(), path)

		Convey("Then rows load with optional columns left nil", func() {
			So(err, ShouldBeNil)
			So(res.Records, ShouldHaveLength, 2)
			So(res.Skipped, ShouldEqual, 1)
			So(*res.Records[0].Events, ShouldEqual, 100)
			So(res.Records[1].ID, ShouldEqual, "p3.mxl")
			So(res.Records[1].Events, ShouldBeNil)
		})
	})
}

func TestLoadRejectsUnknownFormat(t *testing.T) {
	_, err := NewLoader().Load(context.Background(), "scores.csv")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("err = %v, want ErrUnsupportedFormat", err)
	}
}

func TestLoadHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewLoader().Load(ctx, "scores.jsonl"); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestExpandPaths(t *testing.T) {
	Convey("Given a directory tree of datasets", t, func() {
		dir := t.TempDir()
		a := writeFile(t, dir, "a.jsonl", "")
		b := writeFile(t, dir, "nested/deep/b.yaml", "")
		writeFile(t, dir, "nested/notes.txt", "")

		Convey("A recursive glob finds supported files", func() {
			got, err := ExpandPaths([]string{filepath.Join(dir, "**", "*.{jsonl,yaml}")})
			So(err, ShouldBeNil)
			So(got, ShouldResemble, []string{a, b})
		})

		Convey("A directory is walked", func() {
			got, err := ExpandPaths([]string{dir})
			So(err, ShouldBeNil)
			So(got, ShouldResemble, []string{a, b})
		})

		Convey("Duplicates collapse", func() {
			got, err := ExpandPaths([]string{a, a, filepath.Join(dir, "*.jsonl")})
			So(err, ShouldBeNil)
			So(got, ShouldResemble, []string{a})
		})

		Convey("No match is an error", func() {
			_, err := ExpandPaths([]string{filepath.Join(dir, "*.parquet")})
			So(errors.Is(err, ErrNoInput), ShouldBeTrue)
		})
	})
}
