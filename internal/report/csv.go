package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// CSV file stems. Each file is written as <stem><simtag>.csv.
const (
	FilePeople      = "people"
	FileFriendships = "friendships"
	FileEncounters  = "encounters"
	FileSimilarity  = "similarity"
	FileDropout     = "dropout"
	FileGraduated   = "graduated"
	FileChange      = "change"
)

var (
	peopleHeader     = []string{"period", "id", "numFriends", "numGroups", "race", "gender", "alienation", "yearInSchool"}
	friendshipHeader = []string{"period", "idA", "idB"}
	encounterHeader  = []string{"period", "idA", "idB", "kind"}
	similarityHeader = []string{"period", "race", "similarity", "friends"}
	graduatedHeader  = []string{"period", "id", "numFriends", "race", "alienation", "year"}
	changeHeader     = []string{"period", "id", "extroversion", "numFriends", "numGroups", "depChange", "indepChange"}
)

type csvFile struct {
	f *os.File
	w *csv.Writer
}

// CSVSink writes each record type to its own CSV file in one directory.
type CSVSink struct {
	files map[string]*csvFile
}

// NewCSVSink creates (truncating) the run's CSV files in dir and writes
// their headers.
func NewCSVSink(dir string, simTag int64) (*CSVSink, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	headers := map[string][]string{
		FilePeople:      peopleHeader,
		FileFriendships: friendshipHeader,
		FileEncounters:  encounterHeader,
		FileSimilarity:  similarityHeader,
		FileDropout:     peopleHeader,
		FileGraduated:   graduatedHeader,
		FileChange:      changeHeader,
	}

	s := &CSVSink{files: make(map[string]*csvFile, len(headers))}
	for stem, header := range headers {
		path := filepath.Join(dir, FileName(stem, simTag))
		f, err := os.Create(path)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("create %s: %w", path, err)
		}
		cf := &csvFile{f: f, w: csv.NewWriter(f)}
		s.files[stem] = cf
		if err := cf.w.Write(header); err != nil {
			s.Close()
			return nil, fmt.Errorf("write header %s: %w", path, err)
		}
	}
	return s, nil
}

// FileName returns the file name used for stem in the run tagged simTag.
func FileName(stem string, simTag int64) string {
	return fmt.Sprintf("%s%d.csv", stem, simTag)
}

func (s *CSVSink) write(stem string, rows ...[]string) error {
	cf, ok := s.files[stem]
	if !ok {
		return fmt.Errorf("csv sink: %s is closed", stem)
	}
	for _, row := range rows {
		if err := cf.w.Write(row); err != nil {
			return fmt.Errorf("write %s: %w", stem, err)
		}
	}
	return nil
}

func itoa(v int) string     { return strconv.Itoa(v) }
func i64(v int64) string    { return strconv.FormatInt(v, 10) }
func ftoa(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
func btoa(v bool) string    { return strconv.FormatBool(v) }

func personRow(p PersonSnapshot) []string {
	return []string{itoa(p.Year), i64(p.ID), itoa(p.NumFriends), itoa(p.NumGroups),
		p.Race, p.Gender, ftoa(p.Alienation), itoa(p.YearInSchool)}
}

func (s *CSVSink) Interaction(r Interaction) error {
	return s.write(FileEncounters, []string{itoa(r.Year), i64(r.A), i64(r.B), r.Kind.String()})
}

func (s *CSVSink) Similarity(r SimilarityRecord) error {
	return s.write(FileSimilarity, []string{itoa(r.Year), r.RacePair, ftoa(r.Similarity), btoa(r.Friends)})
}

func (s *CSVSink) People(rs []PersonSnapshot) error {
	rows := make([][]string, len(rs))
	for i, r := range rs {
		rows[i] = personRow(r)
	}
	return s.write(FilePeople, rows...)
}

func (s *CSVSink) Friendships(rs []FriendshipSnapshot) error {
	rows := make([][]string, len(rs))
	for i, r := range rs {
		rows[i] = []string{itoa(r.Year), i64(r.A), i64(r.B)}
	}
	return s.write(FileFriendships, rows...)
}

func (s *CSVSink) Changes(rs []ChangeSnapshot) error {
	rows := make([][]string, len(rs))
	for i, r := range rs {
		rows[i] = []string{itoa(r.Year), i64(r.ID), ftoa(r.Extroversion), itoa(r.NumFriends),
			itoa(r.NumGroups), ftoa(r.DepChange), ftoa(r.IndepChange)}
	}
	return s.write(FileChange, rows...)
}

func (s *CSVSink) Departure(r Departure) error {
	p := r.Person
	switch r.Reason {
	case Graduated:
		return s.write(FileGraduated, []string{itoa(p.Year), i64(p.ID), itoa(p.NumFriends),
			p.Race, ftoa(p.Alienation), itoa(p.YearInSchool)})
	case Dropout:
		return s.write(FileDropout, personRow(p))
	default:
		return fmt.Errorf("csv sink: unknown departure reason %q", r.Reason)
	}
}

// Flush pushes buffered rows of every file to disk.
func (s *CSVSink) Flush() error {
	var errs []error
	for stem, cf := range s.files {
		cf.w.Flush()
		if err := cf.w.Error(); err != nil {
			errs = append(errs, fmt.Errorf("flush %s: %w", stem, err))
		}
	}
	return errors.Join(errs...)
}

// Close flushes and closes every file. The sink is unusable afterwards.
func (s *CSVSink) Close() error {
	errs := []error{s.Flush()}
	for stem, cf := range s.files {
		if err := cf.f.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", stem, err))
		}
		delete(s.files, stem)
	}
	return errors.Join(errs...)
}
