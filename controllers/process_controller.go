package controllers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/drivescan/drivescan-backend/queue"
)

const maxUploadSize = 20 * 1024 * 1024

// EnqueueDocuments takes a multipart batch under "files" and feeds it to
// the queue. Unsupported extensions are dropped silently, duplicates are
// counted; the response carries the resulting transient notice.
func EnqueueDocuments(c *gin.Context) {
	q := c.MustGet("queue").(*queue.Queue)

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No hay archivos adjuntos"})
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No hay archivos adjuntos"})
		return
	}

	var incoming []queue.IncomingFile
	for _, header := range files {
		if header.Size > maxUploadSize {
			c.JSON(http.StatusBadRequest, gin.H{"error": "El archivo " + header.Filename + " supera los 20MB"})
			return
		}
		src, err := header.Open()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo leer " + header.Filename, "details": err.Error()})
			return
		}
		data, err := io.ReadAll(src)
		src.Close()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo leer " + header.Filename, "details": err.Error()})
			return
		}
		incoming = append(incoming, queue.IncomingFile{Name: header.Filename, Data: data})
	}

	result := q.Enqueue(incoming)
	_, notice := q.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"added":   result.Added,
		"skipped": result.Skipped,
		"notice":  notice,
	})
}

// GetQueue returns the jobs in insertion order plus the live notice.
func GetQueue(c *gin.Context) {
	q := c.MustGet("queue").(*queue.Queue)
	jobs, notice := q.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"jobs":       jobs,
		"notice":     notice,
		"processing": q.Processing(),
	})
}

// DismissNotice clears the transient enqueue notice early.
func DismissNotice(c *gin.Context) {
	q := c.MustGet("queue").(*queue.Queue)
	q.DismissNotice()
	c.JSON(http.StatusOK, gin.H{"message": "ok"})
}

// SyncAll retries the bridge write for every completed job still marked
// unsynced.
func SyncAll(c *gin.Context) {
	w := c.MustGet("worker").(*queue.Worker)
	count, err := w.SyncAll()
	if err != nil {
		if errors.Is(err, queue.ErrNoEndpoint) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"synced": count})
}
