// Package server exposes indexed Tabix region queries over HTTP. It is
// additional domain-stack wiring demonstrating internal/scanner against a
// real transport, not part of the core BGZF/Tabix library.
//
// Grounded on htsget-multisource-server/file/reads.go's gin handler shape,
// regenerated to stream Tabix-matched records instead of building a
// BAM/BAI htsget URL-list response.
package server

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cschin/go-bgzip/internal/bgzfio"
	"github.com/cschin/go-bgzip/internal/scanner"
	"github.com/cschin/go-bgzip/internal/tabix"
)

// Server serves region queries against BGZF+Tabix files rooted at
// directory.
type Server struct {
	directory string
}

// NewServer returns a Server that opens files relative to directory.
func NewServer(directory string) *Server {
	return &Server{directory: directory}
}

// Export registers the server's routes on engine.
func (s *Server) Export(engine *gin.Engine) {
	engine.GET("/regions/:file", s.handleRegionQuery)
}

// handleRegionQuery implements:
//   GET /regions/:file?reference=chr17&start=42990000&end=42990600
// opening :file and :file.tbi, running scanner.Fetch, and streaming
// matching tab-delimited lines back with Content-Type:
// text/tab-separated-values.
func (s *Server) handleRegionQuery(c *gin.Context) {
	requestID := uuid.New().String()

	file := c.Param("file")
	reference := c.Query("reference")
	start, err := strconv.ParseUint(c.Query("start"), 10, 64)
	if err != nil {
		c.String(http.StatusBadRequest, "invalid start: %v", err)
		return
	}
	end, err := strconv.ParseUint(c.Query("end"), 10, 64)
	if err != nil {
		c.String(http.StatusBadRequest, "invalid end: %v", err)
		return
	}

	root := filepath.Clean(s.directory)
	path := filepath.Join(root, file)
	if path != root && !strings.HasPrefix(path, root+string(filepath.Separator)) {
		c.String(http.StatusBadRequest, "invalid file path")
		return
	}

	dataFile, err := os.Open(path)
	if err != nil {
		log.Printf("request %s: opening %s: %v", requestID, path, err)
		c.String(http.StatusNotFound, "file not found")
		return
	}
	defer dataFile.Close()

	indexFile, err := os.Open(path + ".tbi")
	if err != nil {
		log.Printf("request %s: opening index for %s: %v", requestID, path, err)
		c.String(http.StatusNotFound, "index not found")
		return
	}
	defer indexFile.Close()

	idx, err := tabix.Read(indexFile)
	if err != nil {
		log.Printf("request %s: parsing index for %s: %v", requestID, path, err)
		c.String(http.StatusInternalServerError, "malformed index")
		return
	}

	rid, ok := idx.Name2RID(reference)
	if !ok {
		c.String(http.StatusBadRequest, "unknown reference %q", reference)
		return
	}

	reader, err := bgzfio.NewReader(dataFile)
	if err != nil {
		log.Printf("request %s: opening BGZF stream for %s: %v", requestID, path, err)
		c.String(http.StatusInternalServerError, "malformed data file")
		return
	}

	sc := scanner.NewScanner(reader, idx, idx, scanner.Format{
		ColSeq:    idx.ColSeq,
		ColBeg:    idx.ColBeg,
		ColEnd:    idx.ColEnd,
		Meta:      byte(idx.Meta),
		ZeroBased: idx.ZeroBased,
		VCFMode:   idx.VCFMode,
		SAMMode:   idx.SAMMode,
	})
	if err := sc.Fetch(rid, start, end); err != nil {
		log.Printf("request %s: fetching %s:%d-%d: %v", requestID, reference, start, end, err)
		c.String(http.StatusInternalServerError, "query failed")
		return
	}

	c.Header("Content-Type", "text/tab-separated-values")
	c.Status(http.StatusOK)

	matched := 0
	for {
		record, ok, err := sc.Read()
		if err != nil {
			log.Printf("request %s: scanning %s:%d-%d: %v", requestID, reference, start, end, err)
			return
		}
		if !ok {
			break
		}
		if _, err := c.Writer.Write(record.Line); err != nil {
			log.Printf("request %s: writing response: %v", requestID, err)
			return
		}
		matched++
	}
	log.Printf("request %s: %s %s:%d-%d matched %d records", requestID, file, reference, start, end, matched)
}

// Serve starts the HTTP server on addr, blocking until it returns an error.
func Serve(addr, directory string) error {
	engine := gin.Default()
	NewServer(directory).Export(engine)
	if err := engine.Run(addr); err != nil {
		return fmt.Errorf("server: %v", err)
	}
	return nil
}
