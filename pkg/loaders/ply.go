package loaders

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/df07/volumetric-audio/pkg/core"
	"github.com/df07/volumetric-audio/pkg/mesh"
)

// PLYHeader represents the parsed header information from a PLY file
type PLYHeader struct {
	Format   string // "binary_little_endian", "binary_big_endian", or "ascii"
	Version  string // Usually "1.0"
	Elements []PLYElement
}

// PLYElement is one element block declared in the header, in file order
type PLYElement struct {
	Name  string
	Count int
	Props []PLYProperty
}

// PLYProperty represents a property definition in the PLY header
type PLYProperty struct {
	Name     string
	Type     string
	IsList   bool
	ListType string // For list properties, the type of the count
	DataType string // For list properties, the type of the data
}

// Count returns the declared count of the named element, or 0
func (h *PLYHeader) Count(name string) int {
	for _, e := range h.Elements {
		if e.Name == name {
			return e.Count
		}
	}
	return 0
}

// LoadPLY loads a PLY file into a mesh. Polygon faces are split into triangle fans.
func LoadPLY(filename string, logger core.Logger) (*mesh.Mesh, error) {
	startTime := time.Now()

	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open PLY file: %w", err)
	}
	defer file.Close()

	m, err := ReadPLY(file)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", filename, err)
	}

	if logger != nil {
		logger.Printf("Loaded PLY mesh %s: %d vertices, %d triangles in %v\n",
			filename, len(m.Vertices), m.TriangleCount(), time.Since(startTime))
	}
	return m, nil
}

// ReadPLY reads PLY data in ascii, binary little-endian or binary big-endian format
func ReadPLY(r io.Reader) (*mesh.Mesh, error) {
	br := bufio.NewReader(r)

	header, err := parsePLYHeader(br)
	if err != nil {
		return nil, fmt.Errorf("failed to parse PLY header: %w", err)
	}

	var values plyValueReader
	switch header.Format {
	case "ascii":
		scanner := bufio.NewScanner(br)
		scanner.Split(bufio.ScanWords)
		values = &asciiValueReader{scanner: scanner}
	case "binary_little_endian":
		values = &binaryValueReader{r: br, order: binary.LittleEndian}
	case "binary_big_endian":
		values = &binaryValueReader{r: br, order: binary.BigEndian}
	default:
		return nil, fmt.Errorf("unsupported PLY format: %s", header.Format)
	}

	vertices, indices, err := readPLYElements(values, header)
	if err != nil {
		return nil, fmt.Errorf("failed to read PLY data: %w", err)
	}

	m, err := mesh.New(vertices, indices)
	if err != nil {
		return nil, fmt.Errorf("invalid PLY mesh: %w", err)
	}
	return m, nil
}

// parsePLYHeader reads header lines up to and including end_header, leaving
// the reader positioned at the first data byte
func parsePLYHeader(br *bufio.Reader) (*PLYHeader, error) {
	header := &PLYHeader{}
	var current *PLYElement

	for lineNumber := 1; ; lineNumber++ {
		raw, err := br.ReadString('\n')
		if err != nil && (err != io.EOF || raw == "") {
			return nil, fmt.Errorf("header ended before end_header: %w", err)
		}
		line := strings.TrimSpace(raw)

		if lineNumber == 1 {
			if line != "ply" {
				return nil, fmt.Errorf("not a PLY file")
			}
			continue
		}
		if line == "end_header" {
			break
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "format":
			if len(parts) < 3 {
				return nil, fmt.Errorf("invalid format line: %q", line)
			}
			header.Format = parts[1]
			header.Version = parts[2]
		case "comment", "obj_info":
		case "element":
			if len(parts) < 3 {
				return nil, fmt.Errorf("invalid element line: %q", line)
			}
			count, err := strconv.Atoi(parts[2])
			if err != nil || count < 0 {
				return nil, fmt.Errorf("invalid element count: %s", parts[2])
			}
			header.Elements = append(header.Elements, PLYElement{Name: parts[1], Count: count})
			current = &header.Elements[len(header.Elements)-1]
		case "property":
			if current == nil {
				return nil, fmt.Errorf("property before any element: %q", line)
			}
			prop, err := parsePLYProperty(parts[1:])
			if err != nil {
				return nil, fmt.Errorf("failed to parse property: %w", err)
			}
			current.Props = append(current.Props, prop)
		default:
			return nil, fmt.Errorf("unexpected header line: %q", line)
		}
	}

	if header.Format == "" {
		return nil, fmt.Errorf("missing format line")
	}
	return header, nil
}

// parsePLYProperty parses a property line from the PLY header
func parsePLYProperty(parts []string) (PLYProperty, error) {
	if len(parts) < 2 {
		return PLYProperty{}, fmt.Errorf("invalid property definition")
	}

	prop := PLYProperty{}

	if parts[0] == "list" {
		if len(parts) < 4 {
			return PLYProperty{}, fmt.Errorf("invalid list property definition")
		}
		prop.IsList = true
		prop.ListType = parts[1]
		prop.DataType = parts[2]
		prop.Name = parts[3]
	} else {
		prop.Type = parts[0]
		prop.Name = parts[1]
	}

	return prop, nil
}

// readPLYElements walks every element block in header order, keeping vertex
// positions and face indices and discarding everything else
func readPLYElements(values plyValueReader, header *PLYHeader) ([]core.Vec3, []int, error) {
	vertices := make([]core.Vec3, 0, header.Count("vertex"))
	indices := make([]int, 0, header.Count("face")*3)

	for _, element := range header.Elements {
		for i := 0; i < element.Count; i++ {
			var position [3]float64
			var polygon []int

			for _, prop := range element.Props {
				if prop.IsList {
					list, err := readPLYList(values, prop)
					if err != nil {
						return nil, nil, fmt.Errorf("%s %d, property %s: %w", element.Name, i, prop.Name, err)
					}
					if prop.Name == "vertex_indices" || prop.Name == "vertex_index" {
						polygon = list
					}
					continue
				}

				value, err := values.read(prop.Type)
				if err != nil {
					return nil, nil, fmt.Errorf("%s %d, property %s: %w", element.Name, i, prop.Name, err)
				}
				switch prop.Name {
				case "x":
					position[0] = value
				case "y":
					position[1] = value
				case "z":
					position[2] = value
				}
			}

			switch element.Name {
			case "vertex":
				vertices = append(vertices, core.NewVec3(position[0], position[1], position[2]))
			case "face":
				if len(polygon) < 3 {
					return nil, nil, fmt.Errorf("face %d has %d vertices, need at least 3", i, len(polygon))
				}
				// Fan triangulation keeps the polygon's winding
				for k := 1; k+1 < len(polygon); k++ {
					indices = append(indices, polygon[0], polygon[k], polygon[k+1])
				}
			}
		}
	}

	return vertices, indices, nil
}

func readPLYList(values plyValueReader, prop PLYProperty) ([]int, error) {
	count, err := values.read(prop.ListType)
	if err != nil {
		return nil, fmt.Errorf("failed to read list count: %w", err)
	}
	if count < 0 || count > math.MaxInt32 {
		return nil, fmt.Errorf("invalid list count %v", count)
	}
	list := make([]int, int(count))
	for j := range list {
		value, err := values.read(prop.DataType)
		if err != nil {
			return nil, fmt.Errorf("failed to read list entry %d: %w", j, err)
		}
		list[j] = int(value)
	}
	return list, nil
}

// plyValueReader yields one scalar of the named PLY type at a time
type plyValueReader interface {
	read(dataType string) (float64, error)
}

type asciiValueReader struct {
	scanner *bufio.Scanner
}

func (a *asciiValueReader) read(dataType string) (float64, error) {
	if getTypeSize(dataType) == 0 {
		return 0, fmt.Errorf("unsupported data type: %s", dataType)
	}
	if !a.scanner.Scan() {
		if err := a.scanner.Err(); err != nil {
			return 0, err
		}
		return 0, io.ErrUnexpectedEOF
	}
	value, err := strconv.ParseFloat(a.scanner.Text(), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q", dataType, a.scanner.Text())
	}
	return value, nil
}

type binaryValueReader struct {
	r     io.Reader
	order binary.ByteOrder
	buf   [8]byte
}

func (b *binaryValueReader) read(dataType string) (float64, error) {
	size := getTypeSize(dataType)
	if size == 0 {
		return 0, fmt.Errorf("unsupported data type: %s", dataType)
	}
	data := b.buf[:size]
	if _, err := io.ReadFull(b.r, data); err != nil {
		return 0, err
	}

	switch dataType {
	case "float", "float32":
		return float64(math.Float32frombits(b.order.Uint32(data))), nil
	case "double", "float64":
		return math.Float64frombits(b.order.Uint64(data)), nil
	case "int", "int32":
		return float64(int32(b.order.Uint32(data))), nil
	case "uint", "uint32":
		return float64(b.order.Uint32(data)), nil
	case "short", "int16":
		return float64(int16(b.order.Uint16(data))), nil
	case "ushort", "uint16":
		return float64(b.order.Uint16(data)), nil
	case "char", "int8":
		return float64(int8(data[0])), nil
	default:
		return float64(data[0]), nil
	}
}

// getTypeSize returns the size in bytes of a PLY data type, 0 if unknown
func getTypeSize(dataType string) int {
	switch dataType {
	case "float", "float32", "int", "int32", "uint", "uint32":
		return 4
	case "double", "float64":
		return 8
	case "short", "int16", "ushort", "uint16":
		return 2
	case "char", "int8", "uchar", "uint8":
		return 1
	default:
		return 0
	}
}
