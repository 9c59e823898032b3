// internal/db/themes_parser.go
package db

import (
	"bufio"
	"embed"
	"fmt"
	"io"
	"strings"

	"github.com/codr1/mailthemes/internal/models"
)

//go:embed seeds/themes.txt
var seedsFS embed.FS

const (
	seedThemesPath    = "seeds/themes.txt"
	descriptionPrefix = "description:"
	darkKeyPrefix     = "dark."
)

// ParseThemesFile reads the embedded curated theme list in file order.
func ParseThemesFile() ([]models.Theme, error) {
	file, err := seedsFS.Open(seedThemesPath)
	if err != nil {
		return nil, fmt.Errorf("open embedded themes file: %w", err)
	}
	defer file.Close()

	return ParseThemes(file)
}

// ParseThemes reads blank-line separated theme blocks. Each returned theme is
// public and validated; ids, owners and timestamps are left for the caller.
func ParseThemes(r io.Reader) ([]models.Theme, error) {
	blocks, err := readBlocks(r)
	if err != nil {
		return nil, err
	}

	themes := make([]models.Theme, 0, len(blocks))
	seen := make(map[string]int, len(blocks))
	for _, block := range blocks {
		theme, err := parseBlock(block)
		if err != nil {
			return nil, err
		}
		if first, ok := seen[theme.Name]; ok {
			return nil, fmt.Errorf("duplicate theme %q at lines %d and %d", theme.Name, first, block[0].number)
		}
		seen[theme.Name] = block[0].number
		themes = append(themes, theme)
	}
	return themes, nil
}

type numberedLine struct {
	number int
	text   string
}

func parseBlock(block []numberedLine) (models.Theme, error) {
	theme := models.Theme{
		Name:     block[0].text,
		IsPublic: true,
	}

	rest := block[1:]
	if len(rest) > 0 && strings.HasPrefix(rest[0].text, descriptionPrefix) {
		description := strings.TrimSpace(strings.TrimPrefix(rest[0].text, descriptionPrefix))
		theme.Description = &description
		rest = rest[1:]
	}

	for _, line := range rest {
		key, value, ok := strings.Cut(line.text, " ")
		value = strings.TrimSpace(value)
		if !ok || value == "" {
			return models.Theme{}, fmt.Errorf("line %d: expected \"<key> <value>\", got %q", line.number, line.text)
		}

		target := &theme.ThemeData.RootColors
		if strings.HasPrefix(key, darkKeyPrefix) {
			target = &theme.ThemeData.DarkColors
			key = strings.TrimPrefix(key, darkKeyPrefix)
		}
		if *target == nil {
			*target = models.ColorMap{}
		}
		if _, dup := (*target)[models.ColorKey(key)]; dup {
			return models.Theme{}, fmt.Errorf("line %d: color %q set twice in theme %q", line.number, key, theme.Name)
		}
		(*target)[models.ColorKey(key)] = value
	}

	if err := theme.Validate(); err != nil {
		return models.Theme{}, fmt.Errorf("invalid theme %q at line %d: %w", theme.Name, block[0].number, err)
	}
	return theme, nil
}

func readBlocks(r io.Reader) ([][]numberedLine, error) {
	scanner := bufio.NewScanner(r)
	var (
		blocks  [][]numberedLine
		current []numberedLine
		number  int
	)
	for scanner.Scan() {
		number++
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "#") {
			continue
		}
		if line == "" {
			if len(current) > 0 {
				blocks = append(blocks, current)
				current = nil
			}
			continue
		}
		current = append(current, numberedLine{number: number, text: line})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read themes file: %w", err)
	}
	if len(current) > 0 {
		blocks = append(blocks, current)
	}
	return blocks, nil
}
