package seeder

import (
	"archive/zip"
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/alexivanou/weather-dashboard/internal/config"
	"github.com/alexivanou/weather-dashboard/internal/model"
)

const (
	citiesFile = "cities15000"
	admin1File = "admin1CodesASCII.txt"
)

// Parser parses GeoNames data files
type Parser struct {
	dataDir       string
	batchSize     int
	minPopulation int
}

// NewParser creates a new parser instance with config
func NewParser(seederCfg config.SeederConfig) *Parser {
	batchSize := seederCfg.BatchSize
	if batchSize <= 0 {
		batchSize = 1000
	}

	return &Parser{
		dataDir:       seederCfg.DataDir,
		batchSize:     batchSize,
		minPopulation: seederCfg.MinPopulation,
	}
}

// ParseAdmin1 parses admin1CodesASCII.txt into a map of "CC.code" to region name.
// A missing file yields an empty map, cities are then stored without a state.
func (p *Parser) ParseAdmin1() (map[string]string, error) {
	file, err := os.Open(filepath.Join(p.dataDir, admin1File))
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("failed to open %s: %w", admin1File, err)
	}
	defer file.Close()

	return parseAdmin1FromReader(file)
}

func parseAdmin1FromReader(reader io.Reader) (map[string]string, error) {
	regions := make(map[string]string)
	scanner := bufio.NewScanner(reader)

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// code, name, asciiname, geonameid
		parts := strings.Split(line, "\t")
		if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
			continue
		}
		regions[parts[0]] = parts[1]
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", admin1File, err)
	}
	return regions, nil
}

// ProcessCities streams cities15000.txt (or cities15000.zip) and hands
// batches of cities to the callback. It returns the number of cities read.
func (p *Parser) ProcessCities(regions map[string]string, callback func(batch []model.City) error) (int, error) {
	zipPath := filepath.Join(p.dataDir, citiesFile+".zip")
	if _, err := os.Stat(zipPath); err == nil {
		return p.processCitiesFromZip(zipPath, regions, callback)
	}

	file, err := os.Open(filepath.Join(p.dataDir, citiesFile+".txt"))
	if err != nil {
		return 0, fmt.Errorf("failed to open %s.txt: %w", citiesFile, err)
	}
	defer file.Close()

	return p.processCitiesFromReader(file, regions, callback)
}

func (p *Parser) processCitiesFromZip(zipPath string, regions map[string]string, callback func(batch []model.City) error) (int, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return 0, fmt.Errorf("failed to open zip: %w", err)
	}
	defer r.Close()

	for _, f := range r.File {
		if strings.HasSuffix(f.Name, ".txt") {
			rc, err := f.Open()
			if err != nil {
				return 0, fmt.Errorf("failed to open file in zip: %w", err)
			}
			defer rc.Close()
			return p.processCitiesFromReader(rc, regions, callback)
		}
	}

	return 0, fmt.Errorf("no txt file found in zip")
}

func (p *Parser) processCitiesFromReader(reader io.Reader, regions map[string]string, callback func(batch []model.City) error) (int, error) {
	buf := make([]byte, 0, 64*1024)
	scanner := bufio.NewScanner(reader)
	// alternatenames can make single lines very long
	scanner.Buffer(buf, 1024*1024)

	batch := make([]model.City, 0, p.batchSize)
	total := 0

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := callback(batch); err != nil {
			return fmt.Errorf("city callback error: %w", err)
		}
		total += len(batch)
		batch = batch[:0]
		return nil
	}

	for scanner.Scan() {
		city, ok := p.parseCityLine(scanner.Text(), regions)
		if !ok {
			continue
		}

		batch = append(batch, city)
		if len(batch) >= p.batchSize {
			if err := flush(); err != nil {
				return total, err
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return total, fmt.Errorf("failed to scan cities: %w", err)
	}
	if err := flush(); err != nil {
		return total, err
	}

	return total, nil
}

func (p *Parser) parseCityLine(line string, regions map[string]string) (model.City, bool) {
	parts := strings.Split(line, "\t")
	if len(parts) < 19 {
		return model.City{}, false
	}

	id, err := strconv.Atoi(parts[0])
	if err != nil {
		return model.City{}, false
	}

	population, err := strconv.Atoi(parts[14])
	if err != nil || population < p.minPopulation {
		return model.City{}, false
	}

	lat, err := strconv.ParseFloat(parts[4], 64)
	if err != nil {
		return model.City{}, false
	}

	lon, err := strconv.ParseFloat(parts[5], 64)
	if err != nil {
		return model.City{}, false
	}

	name := strings.TrimSpace(parts[1])
	country := strings.TrimSpace(parts[8])
	if name == "" || country == "" {
		return model.City{}, false
	}

	var timezone *string
	if tz := parts[17]; tz != "" {
		timezone = &tz
	}

	return model.City{
		ID:          id,
		Name:        name,
		CountryCode: country,
		State:       regions[country+"."+parts[10]],
		Population:  population,
		Lat:         lat,
		Lon:         lon,
		Timezone:    timezone,
	}, true
}
