package source

import (
	"archive/zip"
	"bytes"
	"compress/bzip2"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/klauspost/pgzip"
	"github.com/ulikunitz/xz"

	"github.com/ArashLab/caplot/internal/errs"
	"github.com/ArashLab/caplot/internal/table"
)

// Format is a file layout understood by the loader.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatTSV     Format = "tsv"
	FormatArrow   Format = "arrow"
	FormatParquet Format = "parquet"
)

// Compression is a whole-file compression wrapper.
type Compression string

const (
	CompressionNone  Compression = ""
	CompressionGzip  Compression = "gzip"
	CompressionBzip2 Compression = "bzip2"
	CompressionZip   Compression = "zip"
	CompressionXZ    Compression = "xz"
)

var formatSuffixes = map[string]Format{
	".csv":     FormatCSV,
	".tsv":     FormatTSV,
	".tab":     FormatTSV,
	".txt":     FormatTSV,
	".arrow":   FormatArrow,
	".feather": FormatArrow,
	".ipc":     FormatArrow,
	".parquet": FormatParquet,
}

var compressionSuffixes = map[string]Compression{
	".gz":  CompressionGzip,
	".bgz": CompressionGzip,
	".bz2": CompressionBzip2,
	".zip": CompressionZip,
	".xz":  CompressionXZ,
}

// missingValues are the cell texts read as missing in delimited files.
var missingValues = []string{"", "NA", "N/A", "NaN", "nan", "null", "NULL", "<nil>"}

// DetectFile infers the format and compression of path from its suffixes,
// for example "gwas.tsv.gz" is (FormatTSV, CompressionGzip).
func DetectFile(path string) (Format, Compression, error) {
	name := strings.ToLower(filepath.Base(path))
	ext := filepath.Ext(name)

	comp, compressed := compressionSuffixes[ext]
	if compressed {
		name = strings.TrimSuffix(name, ext)
		ext = filepath.Ext(name)
	}
	format, ok := formatSuffixes[ext]
	if !ok {
		return "", CompressionNone, errs.New(errs.CodeUnsupportedSource, "unsupported file type").
			With("path", path)
	}
	return format, comp, nil
}

func (l *Loader) loadFile(path string) (*table.Table, error) {
	format, comp, err := DetectFile(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r, closeFn, err := decompress(f, comp)
	if err != nil {
		return nil, fmt.Errorf("decompress %s: %w", path, err)
	}
	defer closeFn()

	l.logger.Debug("reading file", "path", path, "format", format, "compression", comp)

	var df dataframe.DataFrame
	switch format {
	case FormatCSV:
		df = readDelimited(r, ',')
	case FormatTSV:
		df = readDelimited(r, '\t')
	case FormatArrow, FormatParquet:
		// Both readers need random access, so buffer the decompressed stream.
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		if format == FormatArrow {
			df, err = readArrow(bytes.NewReader(data))
		} else {
			df, err = readParquet(bytes.NewReader(data))
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
	}
	if df.Err != nil {
		return nil, fmt.Errorf("read %s: %w", path, df.Err)
	}
	return table.New(df)
}

func readDelimited(r io.Reader, delimiter rune) dataframe.DataFrame {
	return dataframe.ReadCSV(r,
		dataframe.WithDelimiter(delimiter),
		dataframe.HasHeader(true),
		dataframe.DetectTypes(true),
		dataframe.NaNValues(missingValues),
	)
}

// decompress wraps f according to comp. The returned close function
// releases the decompressor, never f itself.
func decompress(f *os.File, comp Compression) (io.Reader, func(), error) {
	noop := func() {}
	switch comp {
	case CompressionNone:
		return f, noop, nil
	case CompressionGzip:
		// pgzip reads concatenated members, which covers block-gzipped files.
		zr, err := pgzip.NewReader(f)
		if err != nil {
			return nil, noop, err
		}
		return zr, func() { zr.Close() }, nil
	case CompressionBzip2:
		return bzip2.NewReader(f), noop, nil
	case CompressionXZ:
		xr, err := xz.NewReader(f)
		if err != nil {
			return nil, noop, err
		}
		return xr, noop, nil
	case CompressionZip:
		info, err := f.Stat()
		if err != nil {
			return nil, noop, err
		}
		zr, err := zip.NewReader(f, info.Size())
		if err != nil {
			return nil, noop, err
		}
		if len(zr.File) == 0 {
			return nil, noop, fmt.Errorf("zip archive is empty")
		}
		rc, err := zr.File[0].Open()
		if err != nil {
			return nil, noop, err
		}
		return rc, func() { rc.Close() }, nil
	default:
		return nil, noop, fmt.Errorf("unknown compression %q", comp)
	}
}
