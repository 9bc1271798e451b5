package core

import (
	"errors"
	"strings"
	"testing"
)

const sampleHeader = "Día,Mes,Año,N° Publicación,Tipo,Contenido / URL,Estilo\n"

func TestIngest_SingleRow(t *testing.T) {
	csv := sampleHeader + `21,Octubre,2025,1,T,"Welcome","color:red"` + "\n"

	result, err := Ingest([]byte(csv), "contenido_blog.csv")
	if err != nil {
		t.Fatalf("Ingest returned error: %v", err)
	}
	if len(result.Rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(result.Rows))
	}

	want := ContentRow{
		Day:               21,
		Month:             "Octubre",
		Year:              2025,
		PublicationNumber: 1,
		ContentType:       TypeTitle,
		Content:           "Welcome",
		Style:             "color:red",
	}
	if result.Rows[0] != want {
		t.Errorf("row = %+v, want %+v", result.Rows[0], want)
	}
	if result.Tally[TypeTitle] != 1 {
		t.Errorf("tally[T] = %d, want 1", result.Tally[TypeTitle])
	}
}

func TestIngest_Tally(t *testing.T) {
	csv := sampleHeader +
		"21,Octubre,2025,1,T,Titulo,\n" +
		"21,Octubre,2025,1,ST,Subtitulo,\n" +
		"21,Octubre,2025,1,P,Primer parrafo,\n" +
		"21,Octubre,2025,1,P,Segundo parrafo,\n" +
		"21,Octubre,2025,1,I,https://example.com/a.png,\n"

	result, err := Ingest([]byte(csv), "blog.csv")
	if err != nil {
		t.Fatalf("Ingest returned error: %v", err)
	}
	if len(result.Rows) != 5 {
		t.Fatalf("got %d rows, want 5", len(result.Rows))
	}

	want := TypeTally{TypeTitle: 1, TypeSubtitle: 1, TypeParagraph: 2, TypeImage: 1}
	for ct, n := range want {
		if result.Tally[ct] != n {
			t.Errorf("tally[%s] = %d, want %d", ct, result.Tally[ct], n)
		}
	}
}

func TestIngest_FirstInvalidRowAbortsBatch(t *testing.T) {
	csv := sampleHeader +
		"21,Octubre,2025,1,T,Titulo,\n" +
		"21,Octubre,2025,1,X,Contenido,\n" +
		"21,Octubre,2025,1,P,Parrafo,\n"

	result, err := Ingest([]byte(csv), "blog.csv")
	if result != nil {
		t.Fatalf("expected nil result, got %d rows", len(result.Rows))
	}

	var re *RowError
	if !errors.As(err, &re) {
		t.Fatalf("expected RowError, got %T: %v", err, err)
	}
	if re.Row != 2 {
		t.Errorf("error row = %d, want 2", re.Row)
	}
	if !strings.Contains(re.Reason, "T/ST/P/I") {
		t.Errorf("reason %q should name the expected codes", re.Reason)
	}
}

func TestIngest_InvalidImageURL(t *testing.T) {
	csv := sampleHeader + "21,Octubre,2025,1,I,ftp://bad,\n"

	_, err := Ingest([]byte(csv), "blog.csv")
	var re *RowError
	if !errors.As(err, &re) {
		t.Fatalf("expected RowError, got %T: %v", err, err)
	}
	if re.Row != 1 {
		t.Errorf("error row = %d, want 1", re.Row)
	}
	if !strings.Contains(re.Reason, "URL") {
		t.Errorf("reason %q should mention URL", re.Reason)
	}
}

func TestIngest_UnsupportedExtension(t *testing.T) {
	for _, name := range []string{"blog.txt", "blog.pdf", "blog", "blog.csv.exe"} {
		_, err := Ingest([]byte("data"), name)
		if !errors.Is(err, ErrUnsupportedFormat) {
			t.Errorf("Ingest(%q) error = %v, want ErrUnsupportedFormat", name, err)
		}
	}
}

func TestIngest_MissingColumns(t *testing.T) {
	csv := "Tipo,Contenido / URL\nT,Titulo\n"

	_, err := Ingest([]byte(csv), "blog.csv")
	var se *SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("expected SchemaError, got %T: %v", err, err)
	}
	if len(se.Missing) != 4 {
		t.Errorf("missing = %v, want 4 fields", se.Missing)
	}
}

func TestIngest_EmptyRowsSkipped(t *testing.T) {
	csv := sampleHeader +
		"21,Octubre,2025,1,T,Titulo,\n" +
		",,,,,,\n" +
		"21,Octubre,2025,1,P,Parrafo,\n"

	result, err := Ingest([]byte(csv), "blog.csv")
	if err != nil {
		t.Fatalf("Ingest returned error: %v", err)
	}
	if len(result.Rows) != 2 {
		t.Errorf("got %d rows, want 2 (blank row skipped)", len(result.Rows))
	}
}

func TestIngest_NoDataRows(t *testing.T) {
	_, err := Ingest([]byte(sampleHeader), "blog.csv")
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("expected DecodeError for header-only file, got %T: %v", err, err)
	}

	_, err = Ingest([]byte{}, "blog.csv")
	if !errors.As(err, &de) {
		t.Fatalf("expected DecodeError for empty file, got %T: %v", err, err)
	}
}

func TestIngest_FileTooLarge(t *testing.T) {
	orig := MaxFileSize
	MaxFileSize = 64
	defer func() { MaxFileSize = orig }()

	data := []byte(sampleHeader + strings.Repeat("21,Octubre,2025,1,P,texto,\n", 10))
	_, err := Ingest(data, "blog.csv")
	if !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("error = %v, want ErrFileTooLarge", err)
	}
}

func TestIngest_RowOrderPreserved(t *testing.T) {
	csv := sampleHeader +
		"1,Enero,2025,1,P,primero,\n" +
		"2,Enero,2025,1,P,segundo,\n" +
		"3,Enero,2025,1,P,tercero,\n"

	result, err := Ingest([]byte(csv), "blog.csv")
	if err != nil {
		t.Fatalf("Ingest returned error: %v", err)
	}

	want := []string{"primero", "segundo", "tercero"}
	for i, content := range want {
		if result.Rows[i].Content != content {
			t.Errorf("rows[%d].Content = %q, want %q", i, result.Rows[i].Content, content)
		}
	}
}
