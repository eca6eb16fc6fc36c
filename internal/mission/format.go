package mission

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/UnmannedAerialSystems/PSUUAS-monorepo-2025/internal/apperr"
)

// header is the literal first line of a QGC WPL 110 mission file.
const header = "QGC WPL 110"

// Load reads a mission file in the QGC WPL 110 text format. Blank lines
// are skipped; a line with other than 12 tab-separated fields fails
// with apperr.MalformedItem. The loaded mission retains its field order
// verbatim — Normalize is not called automatically, matching spec.md's
// "retains its field order verbatim" clause.
func Load(path string, t Type, targetSystem, targetComponent uint8) (*Mission, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperr.New(apperr.FileNotFound, "%s: %v", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lineNo := 0

	if !scanner.Scan() {
		return nil, apperr.New(apperr.FileEmpty, "%s", path)
	}
	lineNo++
	firstLine := strings.TrimSpace(scanner.Text())
	if firstLine != header {
		return nil, apperr.New(apperr.MalformedItem, "%s: line %d: expected %q header, got %q", path, lineNo, header, firstLine)
	}

	m := New(t, targetSystem, targetComponent)

	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if strings.TrimSpace(line) == "" {
			continue
		}

		item, err := parseLine(line)
		if err != nil {
			return nil, apperr.New(apperr.MalformedItem, "%s: line %d: %v", path, lineNo, err)
		}
		m.Items = append(m.Items, item)
	}

	if err := scanner.Err(); err != nil {
		return nil, apperr.New(apperr.FileNotFound, "%s: %v", path, err)
	}
	if len(m.Items) == 0 {
		return nil, apperr.New(apperr.FileEmpty, "%s: no items after header", path)
	}

	return m, nil
}

// parseLine parses a single 12-field tab-separated mission item line.
func parseLine(line string) (Item, error) {
	fields := strings.Split(line, "\t")
	if len(fields) != 12 {
		return Item{}, fmt.Errorf("expected 12 fields, got %d", len(fields))
	}

	seq, err := strconv.ParseUint(fields[0], 10, 16)
	if err != nil {
		return Item{}, err
	}
	current, err := strconv.ParseUint(fields[1], 10, 8)
	if err != nil {
		return Item{}, err
	}
	frame, err := strconv.Atoi(fields[2])
	if err != nil {
		return Item{}, err
	}
	command, err := strconv.Atoi(fields[3])
	if err != nil {
		return Item{}, err
	}
	p1, err := strconv.ParseFloat(fields[4], 64)
	if err != nil {
		return Item{}, err
	}
	p2, err := strconv.ParseFloat(fields[5], 64)
	if err != nil {
		return Item{}, err
	}
	p3, err := strconv.ParseFloat(fields[6], 64)
	if err != nil {
		return Item{}, err
	}
	p4, err := strconv.ParseFloat(fields[7], 64)
	if err != nil {
		return Item{}, err
	}
	lat, err := strconv.ParseFloat(fields[8], 64)
	if err != nil {
		return Item{}, err
	}
	lon, err := strconv.ParseFloat(fields[9], 64)
	if err != nil {
		return Item{}, err
	}
	alt, err := strconv.ParseFloat(fields[10], 64)
	if err != nil {
		return Item{}, err
	}
	autocontinue, err := strconv.ParseUint(fields[11], 10, 8)
	if err != nil {
		return Item{}, err
	}

	return Item{
		Seq:          uint16(seq),
		Current:      uint8(current),
		Frame:        Frame(frame),
		Command:      Command(command),
		P1:           p1,
		P2:           p2,
		P3:           p3,
		P4:           p4,
		Lat:          lat,
		Lon:          lon,
		Alt:          alt,
		Autocontinue: uint8(autocontinue),
	}, nil
}

// Serialize renders the mission back to the QGC WPL 110 text format.
func (m *Mission) Serialize() string {
	var b strings.Builder
	b.WriteString(header)
	b.WriteByte('\n')

	for _, it := range m.Items {
		b.WriteString(strconv.Itoa(int(it.Seq)))
		b.WriteByte('\t')
		b.WriteString(strconv.Itoa(int(it.Current)))
		b.WriteByte('\t')
		b.WriteString(strconv.Itoa(int(it.Frame)))
		b.WriteByte('\t')
		b.WriteString(strconv.Itoa(int(it.Command)))
		b.WriteByte('\t')
		b.WriteString(formatFloat(it.P1))
		b.WriteByte('\t')
		b.WriteString(formatFloat(it.P2))
		b.WriteByte('\t')
		b.WriteString(formatFloat(it.P3))
		b.WriteByte('\t')
		b.WriteString(formatFloat(it.P4))
		b.WriteByte('\t')
		b.WriteString(formatFloat(it.Lat))
		b.WriteByte('\t')
		b.WriteString(formatFloat(it.Lon))
		b.WriteByte('\t')
		b.WriteString(formatFloat(it.Alt))
		b.WriteByte('\t')
		b.WriteString(strconv.Itoa(int(it.Autocontinue)))
		b.WriteByte('\n')
	}

	return b.String()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
