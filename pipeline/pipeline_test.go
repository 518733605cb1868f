package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"testing"

	"github.com/tsawler/wikimelt/classify"
	"github.com/tsawler/wikimelt/filter"
	"github.com/tsawler/wikimelt/headings"
	"github.com/tsawler/wikimelt/htmldoc"
	"github.com/tsawler/wikimelt/model"
	"github.com/tsawler/wikimelt/targets"
)

const busTable = `<table class="wikitable">
<tr><th>País</th><th>Autobús</th><th>Computadora</th></tr>
<tr><td>México</td><td>camión</td><td>computadora</td></tr>
<tr><td>España</td><td>autobús</td><td>ordenador</td></tr>
<tr><td>Artículo de Wikipedia</td><td>—</td><td>—</td></tr>
</table>`

func parse(t *testing.T, src string) *model.Document {
	t.Helper()
	doc, err := htmldoc.ParseString(src)
	if err != nil {
		t.Fatalf("ParseString() failed: %v", err)
	}
	return doc
}

func TestRunEndToEnd(t *testing.T) {
	doc := parse(t, "<body>"+busTable+"</body>")
	p := New(targets.MustNew("México", "España"))

	ds, report, err := p.Run(context.Background(), doc)
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	want := []model.Record{
		{Identifier: "México", Attribute: "Autobús", Value: "camión"},
		{Identifier: "México", Attribute: "Computadora", Value: "computadora"},
		{Identifier: "España", Attribute: "Autobús", Value: "autobús"},
		{Identifier: "España", Attribute: "Computadora", Value: "ordenador"},
	}
	if !reflect.DeepEqual(ds.Records, want) {
		t.Errorf("Records =\n%v\nwant\n%v", ds.Records, want)
	}

	if report.TablesDiscovered != 1 || report.TablesParsed != 1 || report.TablesWithRecords != 1 {
		t.Errorf("report counts = %+v", report)
	}
	if report.RecordsByIdentifier["México"] != 2 || report.RecordsByIdentifier["España"] != 2 {
		t.Errorf("RecordsByIdentifier = %v", report.RecordsByIdentifier)
	}
}

func TestRunHeadingContext(t *testing.T) {
	src := `<body>` + busTable + `
<h2>Transporte</h2>` + busTable + `
<h3>Urbano</h3><p>texto</p>` + busTable + `</body>`

	ds, report, err := New(targets.MustNew("México")).Run(context.Background(), parse(t, src))
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	byTable := map[int]string{}
	for _, r := range ds.Records {
		byTable[r.TableIndex] = r.HeadingContext
	}
	want := map[int]string{0: "", 1: "Transporte", 2: "Urbano"}
	if !reflect.DeepEqual(byTable, want) {
		t.Errorf("heading by table = %v, want %v", byTable, want)
	}
	if !reflect.DeepEqual(report.UniqueHeadings, []string{"", "Transporte", "Urbano"}) {
		t.Errorf("UniqueHeadings = %v", report.UniqueHeadings)
	}
}

func TestRunHeadingLevels(t *testing.T) {
	src := `<body><h2>Transporte</h2><h3>Urbano</h3>` + busTable + `</body>`

	p := New(targets.MustNew("México"), WithHeadingLevels(2))
	ds, _, err := p.Run(context.Background(), parse(t, src))
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if got := ds.Records[0].HeadingContext; got != "Transporte" {
		t.Errorf("HeadingContext = %q, want Transporte", got)
	}
}

func TestRunSkipsTablesWithoutIdentifierColumn(t *testing.T) {
	src := `<body>
<table class="wikitable"><tr><th>a</th></tr><tr><td>x</td></tr></table>
` + busTable + `</body>`

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelWarn}))

	ds, report, err := New(targets.MustNew("México"), WithLogger(logger)).Run(context.Background(), parse(t, src))
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	if len(report.Skipped) != 1 || report.Skipped[0].TableIndex != 0 {
		t.Fatalf("Skipped = %+v", report.Skipped)
	}
	if !errors.Is(report.Skipped[0].Err, classify.ErrNoIdentifierColumn) {
		t.Errorf("Skipped[0].Err = %v", report.Skipped[0].Err)
	}
	for _, r := range ds.Records {
		if r.TableIndex != 1 {
			t.Errorf("record from skipped table: %+v", r)
		}
	}
	if !strings.Contains(logs.String(), "skipping table") || !strings.Contains(logs.String(), "table_index=0") {
		t.Errorf("missing warning in logs: %s", logs.String())
	}
}

func TestRunReportsParseFailures(t *testing.T) {
	src := `<body>
<table class="wikitable"><tr><td rowspan="x">bad</td></tr></table>
` + busTable + `</body>`

	ds, report, err := New(targets.MustNew("México")).Run(context.Background(), parse(t, src))
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	if report.TablesDiscovered != 2 || report.TablesParsed != 1 {
		t.Errorf("discovered/parsed = %d/%d, want 2/1", report.TablesDiscovered, report.TablesParsed)
	}
	if len(report.Failures) != 1 {
		t.Errorf("len(Failures) = %d, want 1", len(report.Failures))
	}
	if ds.Records[0].TableIndex != 0 {
		t.Errorf("TableIndex = %d, want 0", ds.Records[0].TableIndex)
	}
}

func TestRunEmptyResult(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"no tables", `<body><p>nada</p></body>`},
		{"no targets present", busTable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, report, err := New(targets.MustNew("Guatemala")).Run(context.Background(), parse(t, tt.src))
			if !errors.Is(err, ErrEmptyResult) {
				t.Fatalf("Run() error = %v, want ErrEmptyResult", err)
			}
			if ds == nil || !ds.Empty() {
				t.Errorf("dataset = %v, want empty", ds)
			}
			if report == nil {
				t.Error("report should still be returned")
			}
		})
	}
}

func TestRunWithoutTargets(t *testing.T) {
	doc := parse(t, "<body>"+busTable+"</body>")
	p := New(nil)

	if _, _, err := p.Run(context.Background(), doc); !errors.Is(err, targets.ErrEmptyTargets) {
		t.Errorf("Run() error = %v, want ErrEmptyTargets", err)
	}

	res := p.ProcessTable(doc.Tables[0], headings.New(doc))
	if !errors.Is(res.Err, targets.ErrEmptyTargets) || res.Column != -1 || len(res.Records) != 0 {
		t.Errorf("ProcessTable() = %+v, want ErrEmptyTargets and no records", res)
	}
}

func TestRunNilDocument(t *testing.T) {
	if _, _, err := New(targets.Default()).Run(context.Background(), nil); !errors.Is(err, ErrNilDocument) {
		t.Errorf("Run(nil) error = %v", err)
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, n := range []int{1, 4} {
		doc := parse(t, "<body>"+busTable+busTable+busTable+"</body>")
		_, _, err := New(targets.Default(), WithConcurrency(n)).Run(ctx, doc)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("concurrency %d: Run() error = %v, want context.Canceled", n, err)
		}
	}
}

func TestRunConcurrencyKeepsOrder(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("<body>")
	for i := 0; i < 20; i++ {
		fmt.Fprintf(&sb, `<h2>Sección %d</h2>
<table class="wikitable"><tr><th>País</th><th>Objeto %d</th></tr>
<tr><td>México</td><td>valor %d</td></tr><tr><td>Guatemala</td><td>otro %d</td></tr></table>`, i, i, i, i)
	}
	sb.WriteString("</body>")
	doc := parse(t, sb.String())

	sequential, _, err := New(targets.Default()).Run(context.Background(), doc)
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	var calls int
	concurrent, _, err := New(targets.Default(),
		WithConcurrency(8),
		WithProgress(func(done, total int) {
			calls++
			if total != 20 {
				t.Errorf("progress total = %d, want 20", total)
			}
		}),
	).Run(context.Background(), doc)
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	if !reflect.DeepEqual(sequential.Records, concurrent.Records) {
		t.Error("concurrent run differs from sequential run")
	}
	if calls != 20 {
		t.Errorf("progress calls = %d, want 20", calls)
	}
}

func TestRunOptions(t *testing.T) {
	src := `<body><table class="wikitable">
<tr><th>País</th><th>Piscina</th></tr>
<tr><td>MEXICO</td><td>alberca</td></tr>
<tr><td>Ver también</td><td>—</td></tr>
<tr><td>España</td><td>N/A</td></tr>
</table></body>`

	p := New(targets.MustNew("México", "España"),
		WithClassifier(classify.Config{HitWeight: 10, MinLength: 2, MaxLength: 40}),
		WithFilterOptions(
			filter.WithCanonicalIdentifiers(true),
			filter.WithMetadataMarkers("Ver también"),
			filter.WithSentinels("N/A"),
		),
	)

	ds, _, err := p.Run(context.Background(), parse(t, src))
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	want := []model.Record{{Identifier: "México", Attribute: "Piscina", Value: "alberca"}}
	if !reflect.DeepEqual(ds.Records, want) {
		t.Errorf("Records = %v, want %v", ds.Records, want)
	}
}

func TestProcessTable(t *testing.T) {
	table := model.NewTable([]string{"Objeto", "País"})
	table.AddRow([]string{"popote", "México"})
	table.AddRow([]string{"pajita", "Artículo de Wikipedia"})
	table.Index = 7
	table.Position = 50

	doc := model.NewDocument()
	doc.Headings = []model.Heading{{Level: 2, Text: "Utensilios", Position: 10}}

	res := New(targets.MustNew("México")).ProcessTable(table, headings.New(doc))

	if res.Err != nil {
		t.Fatalf("Err = %v", res.Err)
	}
	if res.Column != 1 || res.TableIndex != 7 || res.Heading != "Utensilios" {
		t.Errorf("result = %+v", res)
	}
	if len(res.Scores) != 2 {
		t.Errorf("len(Scores) = %d, want 2", len(res.Scores))
	}
	want := []model.Record{{Identifier: "México", Attribute: "Objeto", Value: "popote", TableIndex: 7, HeadingContext: "Utensilios"}}
	if !reflect.DeepEqual(res.Records, want) {
		t.Errorf("Records = %v, want %v", res.Records, want)
	}
}

func TestProcessTableNoColumn(t *testing.T) {
	table := model.NewTable([]string{"a"})
	table.AddRow([]string{"x"})

	res := New(targets.Default()).ProcessTable(table, nil)
	if !errors.Is(res.Err, classify.ErrNoIdentifierColumn) || res.Column != -1 || len(res.Records) != 0 {
		t.Errorf("result = %+v", res)
	}
}

func TestReportString(t *testing.T) {
	r := &Report{
		TablesDiscovered:    3,
		TablesParsed:        2,
		TablesWithRecords:   1,
		RecordsByIdentifier: map[string]int{"México": 2, "España": 1},
		UniqueHeadings:      []string{"Transporte"},
	}

	got := r.String()
	for _, want := range []string{"Tables discovered: 3", "Tables parsed: 2", "Records: 3", "  España: 1\n  México: 2"} {
		if !strings.Contains(got, want) {
			t.Errorf("String() missing %q:\n%s", want, got)
		}
	}
}
