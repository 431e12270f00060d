// Package discovery finds candidate log files under a set of roots and
// assigns them to parsing modules by file name and content.
package discovery

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/turtacn/ChemLog-QC/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemLog-QC/pkg/errors"
)

// headSize is how much of a file is read to sniff its type and search for
// a content marker.
const headSize = 64 * 1024

// ModuleSpec says which files belong to a module.  A file matches when its
// base name matches one of Globs and, if Contains is set, the marker occurs
// in the first HeadLines lines (0 means anywhere in the sniffed head).
type ModuleSpec struct {
	Module    string   `mapstructure:"module"`
	Globs     []string `mapstructure:"globs"`
	Contains  string   `mapstructure:"contains"`
	HeadLines int      `mapstructure:"head_lines"`
}

// Config controls a walk.
type Config struct {
	Modules         []ModuleSpec
	MaxFileSize     int64
	CleanExtensions []string
	IgnoreNames     []string
}

// File is one discovered log file.
type File struct {
	Module string
	Sample string
	Root   string
	Path   string
	Size   int64
}

// Open opens the file for reading.
func (f File) Open() (io.ReadCloser, error) { return os.Open(f.Path) }

// Result groups discovered files by module, each in walk order.
type Result struct {
	Files   map[string][]File
	Skipped int
}

// Count returns the number of discovered files across modules.
func (r *Result) Count() int {
	n := 0
	for _, files := range r.Files {
		n += len(files)
	}
	return n
}

type Finder struct {
	cfg    Config
	logger logging.Logger
}

func NewFinder(cfg Config, logger logging.Logger) (*Finder, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	for _, m := range cfg.Modules {
		if m.Module == "" || len(m.Globs) == 0 {
			return nil, errors.InvalidParam("discovery module needs a name and at least one glob")
		}
		for _, g := range m.Globs {
			if _, err := path.Match(g, ""); err != nil {
				return nil, errors.InvalidParam("bad file glob").WithDetail("glob=" + g)
			}
		}
	}
	return &Finder{cfg: cfg, logger: logger.Named("discovery")}, nil
}

// Find walks every root.  A root may be a single file.  Unreadable entries
// are logged and skipped; only a missing root is an error.
func (f *Finder) Find(ctx context.Context, roots ...string) (*Result, error) {
	res := &Result{Files: make(map[string][]File)}
	for _, root := range roots {
		if _, err := os.Stat(root); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeLogReadFailed, "input path").WithDetail("path=" + root)
		}
		err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if cerr := ctx.Err(); cerr != nil {
				return cerr
			}
			if err != nil {
				f.logger.Warn("unreadable path skipped", logging.Path(p), logging.Err(err))
				res.Skipped++
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if f.ignored(d.Name()) && p != root {
				if d.IsDir() {
					return filepath.SkipDir
				}
				res.Skipped++
				return nil
			}
			if d.IsDir() || !d.Type().IsRegular() {
				return nil
			}
			f.visit(res, root, p, d)
			return nil
		})
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeTimeout, "discovery cancelled")
		}
	}
	f.logger.Info("discovery finished",
		logging.Int("files", res.Count()),
		logging.Int("skipped", res.Skipped))
	return res, nil
}

func (f *Finder) ignored(name string) bool {
	for _, g := range f.cfg.IgnoreNames {
		if ok, _ := path.Match(g, name); ok {
			return true
		}
	}
	return false
}

func (f *Finder) visit(res *Result, root, p string, d fs.DirEntry) {
	var candidates []ModuleSpec
	for _, m := range f.cfg.Modules {
		if matchAny(m.Globs, d.Name()) {
			candidates = append(candidates, m)
		}
	}
	if len(candidates) == 0 {
		return
	}

	info, err := d.Info()
	if err != nil {
		f.logger.Warn("stat failed", logging.Path(p), logging.Err(err))
		res.Skipped++
		return
	}
	if f.cfg.MaxFileSize > 0 && info.Size() > f.cfg.MaxFileSize {
		f.logger.Debug("file too large", logging.Path(p), logging.Int64("size", info.Size()))
		res.Skipped++
		return
	}

	head, err := readHead(p)
	if err != nil {
		f.logger.Warn("read failed", logging.Path(p), logging.Err(err))
		res.Skipped++
		return
	}
	if len(head) > 0 && !isText(head) {
		f.logger.Debug("binary file skipped", logging.Path(p), logging.String("mime", mimetype.Detect(head).String()))
		res.Skipped++
		return
	}

	for _, m := range candidates {
		if m.Contains != "" && !containsMarker(head, m.Contains, m.HeadLines) {
			continue
		}
		file := File{
			Module: m.Module,
			Sample: CleanSampleName(d.Name(), f.cfg.CleanExtensions),
			Root:   root,
			Path:   p,
			Size:   info.Size(),
		}
		res.Files[m.Module] = append(res.Files[m.Module], file)
		f.logger.Debug("file matched", logging.Module(m.Module), logging.Path(p), logging.Sample(file.Sample))
	}
}

func matchAny(globs []string, name string) bool {
	for _, g := range globs {
		if ok, _ := path.Match(g, name); ok {
			return true
		}
	}
	return false
}

func readHead(p string) ([]byte, error) {
	fh, err := os.Open(p)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	buf := make([]byte, headSize)
	n, err := io.ReadFull(fh, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, err
	}
	return buf[:n], nil
}

func isText(head []byte) bool {
	for m := mimetype.Detect(head); m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return false
}

func containsMarker(head []byte, marker string, lines int) bool {
	s := string(head)
	if lines > 0 {
		cut := 0
		for i := 0; i < lines; i++ {
			j := strings.IndexByte(s[cut:], '\n')
			if j < 0 {
				cut = len(s)
				break
			}
			cut += j + 1
		}
		s = s[:cut]
	}
	return strings.Contains(s, marker)
}

// CleanSampleName strips the first matching extension from a file name,
// repeatedly, so "mol.out.log" with [".log", ".out"] becomes "mol".
func CleanSampleName(name string, exts []string) string {
	for {
		trimmed := name
		for _, ext := range exts {
			if ext != "" && strings.HasSuffix(trimmed, ext) && len(trimmed) > len(ext) {
				trimmed = strings.TrimSuffix(trimmed, ext)
				break
			}
		}
		if trimmed == name {
			return name
		}
		name = trimmed
	}
}

// DefaultModules returns the built-in module specs.
func DefaultModules() []ModuleSpec {
	return []ModuleSpec{
		{Module: "qm", Globs: []string{"*.log", "*.out"}, Contains: "Gaussian"},
		{Module: "tessellate", Globs: []string{"*.txt", "*.json", "*.log"}, Contains: "tessellate", HeadLines: 1},
		{Module: "tesselate", Globs: []string{"*.tesselate", "*_tesselate.txt"}},
	}
}

//Personal.AI order the ending
