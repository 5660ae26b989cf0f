package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"runtime"
	"strings"

	pg "huntcore/internal/postgres"

	"github.com/paulmach/orb"
	"github.com/qedus/osmpbf"
	"gorm.io/gorm"
)

// motorized lists the highway tag values that count as roads or motorized
// trails for isolation scoring. Footpaths do not pressure bedding areas the
// way motorized access does.
var motorized = map[string]bool{
	"motorway": true, "trunk": true, "primary": true, "secondary": true,
	"tertiary": true, "unclassified": true, "residential": true,
	"service": true, "track": true,
}

// sampleEveryNthNode thins dense way geometries; road-distance queries only
// need points every few tens of meters.
const sampleEveryNthNode = 3

const insertBatchSize = 1000

func main() {
	dbURL := flag.String("db-url", "", "PostgreSQL connection URL")
	osmFile := flag.String("osm-file", "", "Path to the OSM PBF extract")
	bboxFlag := flag.String("bbox", "", "Optional bounding box minLon,minLat,maxLon,maxLat")
	flag.Parse()

	if *dbURL == "" || *osmFile == "" {
		log.Fatalln("Both -db-url and -osm-file are required")
	}

	bound, err := parseBBox(*bboxFlag)
	if err != nil {
		log.Fatalf("Invalid bbox: %v", err)
	}

	db := pg.Init(*dbURL)

	indexer := NewRoadIndexer(db, bound)
	if err := indexer.ProcessOSMFile(*osmFile); err != nil {
		log.Fatalf("Failed to process OSM file: %v", err)
	}

	log.Printf("Indexing complete: %d road points written", indexer.WrittenPoints)
}

func parseBBox(raw string) (*orb.Bound, error) {
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	if len(parts) != 4 {
		return nil, fmt.Errorf("expected minLon,minLat,maxLon,maxLat, got %q", raw)
	}
	vals := make([]float64, 4)
	for i, part := range parts {
		if _, err := fmt.Sscanf(strings.TrimSpace(part), "%f", &vals[i]); err != nil {
			return nil, fmt.Errorf("bad bbox component %q", part)
		}
	}
	b := orb.Bound{Min: orb.Point{vals[0], vals[1]}, Max: orb.Point{vals[2], vals[3]}}
	return &b, nil
}

// RoadIndexer extracts motorized-way geometry from an OSM PBF file into the
// road_points table.
type RoadIndexer struct {
	db             *gorm.DB
	bound          *orb.Bound
	processedNodes map[int64]orb.Point

	WrittenPoints int
}

// NewRoadIndexer creates a new road indexer
func NewRoadIndexer(db *gorm.DB, bound *orb.Bound) *RoadIndexer {
	return &RoadIndexer{
		db:             db,
		bound:          bound,
		processedNodes: make(map[int64]orb.Point),
	}
}

// ProcessOSMFile runs the two decoder passes: nodes first, then highway ways.
func (p *RoadIndexer) ProcessOSMFile(osmFilePath string) error {
	log.Printf("Processing OSM file: %s", osmFilePath)

	file, err := os.Open(osmFilePath)
	if err != nil {
		return fmt.Errorf("failed to open OSM file: %w", err)
	}
	defer file.Close()

	decoder := osmpbf.NewDecoder(file)
	decoder.SetBufferSize(osmpbf.MaxBlobSize)
	decoder.Start(runtime.GOMAXPROCS(-1))

	log.Println("First pass: collecting nodes...")
	if err := p.collectNodes(decoder); err != nil {
		return err
	}

	// Rewind the file for the second pass
	if _, err := file.Seek(0, 0); err != nil {
		return fmt.Errorf("failed to rewind OSM file: %w", err)
	}

	decoder = osmpbf.NewDecoder(file)
	decoder.SetBufferSize(osmpbf.MaxBlobSize)
	decoder.Start(runtime.GOMAXPROCS(-1))

	log.Println("Second pass: processing highway ways...")
	if err := p.processHighways(decoder); err != nil {
		return err
	}

	return nil
}

// collectNodes collects coordinates for every node inside the bbox.
func (p *RoadIndexer) collectNodes(decoder *osmpbf.Decoder) error {
	var nodeCount int

	for {
		obj, err := decoder.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("error decoding OSM data: %w", err)
		}

		if node, ok := obj.(*osmpbf.Node); ok {
			pt := orb.Point{node.Lon, node.Lat}
			if p.bound != nil && !p.bound.Contains(pt) {
				continue
			}
			p.processedNodes[node.ID] = pt
			nodeCount++

			if nodeCount%1000000 == 0 {
				log.Printf("Processed %d nodes...", nodeCount)
			}
		}
	}

	log.Printf("Collected %d nodes", nodeCount)
	return nil
}

// processHighways walks the ways, keeps motorized highway types, and writes
// sampled points to PostgreSQL in transactional batches.
func (p *RoadIndexer) processHighways(decoder *osmpbf.Decoder) error {
	var wayCount int
	batch := make([]pg.RoadPointPG, 0, insertBatchSize)

	for {
		obj, err := decoder.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("error decoding OSM data: %w", err)
		}

		way, ok := obj.(*osmpbf.Way)
		if !ok {
			continue
		}
		highway, ok := way.Tags["highway"]
		if !ok || !motorized[highway] {
			continue
		}

		for i, nodeID := range way.NodeIDs {
			if i%sampleEveryNthNode != 0 && i != len(way.NodeIDs)-1 {
				continue
			}
			pt, exists := p.processedNodes[nodeID]
			if !exists {
				continue
			}
			batch = append(batch, pg.RoadPointPG{
				OSMWay:  way.ID,
				Highway: highway,
				Lat:     pt[1],
				Lon:     pt[0],
			})
			if len(batch) >= insertBatchSize {
				if err := p.flushBatch(batch); err != nil {
					return err
				}
				batch = batch[:0]
			}
		}

		wayCount++
		if wayCount%10000 == 0 {
			log.Printf("Processed %d highway ways, %d points written...", wayCount, p.WrittenPoints)
		}
	}

	if len(batch) > 0 {
		if err := p.flushBatch(batch); err != nil {
			return err
		}
	}

	log.Printf("Processed %d highway ways", wayCount)
	return nil
}

func (p *RoadIndexer) flushBatch(batch []pg.RoadPointPG) error {
	err := p.db.Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(batch, len(batch)).Error
	})
	if err != nil {
		return fmt.Errorf("failed to insert road points: %w", err)
	}
	p.WrittenPoints += len(batch)
	return nil
}
