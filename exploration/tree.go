package exploration

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"
)

// CSVDir is the sub-directory of a method directory that holds the run files.
const CSVDir = "csv"

// folder is a sub-directory found while scanning the tree.
type folder struct {
	name    string
	path    string
	modTime int64
}

// subfolders returns the immediate sub-directories of 'root' in ascending
// modification time, which is the order the experiments were produced in.
// Equal times fall back to the name so the order is deterministic.
func subfolders(root string) ([]folder, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	folders := make([]folder, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, err
		}
		folders = append(folders, folder{
			name:    entry.Name(),
			path:    filepath.Join(root, entry.Name()),
			modTime: info.ModTime().UnixNano(),
		})
	}

	sort.SliceStable(folders, func(i, j int) bool {
		if folders[i].modTime != folders[j].modTime {
			return folders[i].modTime < folders[j].modTime
		}
		return folders[i].name < folders[j].name
	})
	return folders, nil
}

//=============================================================================
// Loaders for the supported tree depths
//=============================================================================

// LoadBenchmark loads a single exploration: 'root' is a benchmark directory
// with one directory per method below it.
//
//	<root>/<method>/csv/<run>.csv
func LoadBenchmark(root string) (*Benchmark, error) {
	return loadBenchmark(filepath.Base(filepath.Clean(root)), 0, root)
}

// LoadExperiment loads multiple explorations: 'root' holds one directory per
// benchmark.
//
//	<root>/<benchmark>/<method>/csv/<run>.csv
func LoadExperiment(root string) (*Experiment, error) {
	folders, err := subfolders(root)
	if err != nil {
		return nil, err
	}

	experiment := &Experiment{Name: filepath.Base(filepath.Clean(root))}
	for index, f := range folders {
		benchmark, err := loadBenchmark(f.name, index, f.path)
		if err != nil {
			return nil, err
		}
		experiment.Benchmarks = append(experiment.Benchmarks, benchmark)
	}
	return experiment, nil
}

// LoadOrderedExperiment loads experiments that were tuned under several
// orders.
//
//	<root>/<benchmark>/<order>/<method>/csv/<run>.csv
func LoadOrderedExperiment(root string) (*OrderedExperiment, error) {
	folders, err := subfolders(root)
	if err != nil {
		return nil, err
	}

	experiment := &OrderedExperiment{Name: filepath.Base(filepath.Clean(root))}
	for index, f := range folders {
		orderFolders, err := subfolders(f.path)
		if err != nil {
			return nil, err
		}
		benchmark := &OrderedBenchmark{Name: f.name, Index: index}
		for orderIndex, order := range orderFolders {
			orderData, err := loadBenchmark(order.name, orderIndex, order.path)
			if err != nil {
				return nil, err
			}
			benchmark.Orders = append(benchmark.Orders, orderData)
		}
		experiment.Benchmarks = append(experiment.Benchmarks, benchmark)
	}
	return experiment, nil
}

func loadBenchmark(name string, index int, path string) (*Benchmark, error) {
	log.WithField("dir", path).Debug("scanning benchmark")

	folders, err := subfolders(path)
	if err != nil {
		return nil, err
	}

	benchmark := &Benchmark{Name: name, Index: index}
	for methodIndex, f := range folders {
		method, err := loadMethod(f.name, methodIndex, f.path)
		if err != nil {
			return nil, err
		}
		benchmark.Methods = append(benchmark.Methods, method)
	}
	return benchmark, nil
}

// loadMethod loads every file ending in "csv" below <path>/csv. A method
// without run files is valid; a method without the csv directory is not.
func loadMethod(name string, index int, path string) (*Method, error) {
	csvDir := filepath.Join(path, CSVDir)
	entries, err := os.ReadDir(csvDir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: method %q has no %s directory: %w", ErrInvalidInput, path, CSVDir, err)
	}
	if err != nil {
		return nil, err
	}

	method := &Method{Name: name, Index: index, Runs: make([]*Run, 0)}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), "csv") {
			continue
		}
		run, err := LoadRun(filepath.Join(csvDir, entry.Name()))
		if err != nil {
			return nil, err
		}
		method.Runs = append(method.Runs, run)
	}
	log.WithFields(log.Fields{"method": name, "runs": len(method.Runs)}).Debug("loaded method")
	return method, nil
}
