// Package backendtest provides an in-process fake of the download backend for tests.
package backendtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
)

// Body is a JSON response body.
type Body = map[string]interface{}

// Response is a status code and JSON body. A nil Body with RawBody set sends RawBody verbatim.
type Response struct {
	Status  int
	Body    Body
	RawBody string
}

func OK(body Body) Response {
	return Response{Status: http.StatusOK, Body: body}
}

type DownloadRequest struct {
	URL      string `json:"url"`
	FormatID string `json:"format_id"`
	VideoID  string `json:"video_id"`
}

// DefaultVideoInfo is a successful /video-info response with two video formats, one audio format and one format
// of a kind the client does not know.
func DefaultVideoInfo() Body {
	return Body{
		"success":     true,
		"title":       "Never Gonna Give You Up",
		"channel":     "Rick Astley",
		"thumbnail":   "https://i.ytimg.com/vi/dQw4w9WgXcQ/maxresdefault.jpg",
		"duration":    "3:33",
		"view_count":  1500000,
		"upload_date": "20091025",
		"formats": []Body{
			{"type": "video", "quality": "360p (mp4)", "filesize": 1536, "format_id": "18", "ext": "mp4"},
			{"type": "audio", "quality": "medium audio (m4a)", "filesize": 3400000, "format_id": "140", "ext": "m4a"},
			{"type": "video", "quality": "1080p video (webm)", "format_id": "248", "ext": "webm"},
			{"type": "storyboard", "quality": "sb0", "format_id": "sb0"},
		},
	}
}

// Server fakes the backend under the "/api" prefix. Handlers can be swapped at any time; every request is counted.
type Server struct {
	*httptest.Server

	mu            sync.Mutex
	videoInfo     func(url string) Response
	download      func(req DownloadRequest) Response
	progressQueue []Response
	progress      func(videoID string) Response
	videoInfoGate chan struct{}
	calls         map[string]int
	lookups       []string
	downloads     []DownloadRequest
	progressIDs   []string
}

func NewServer() *Server {
	s := &Server{
		videoInfo: func(string) Response { return OK(DefaultVideoInfo()) },
		download:  func(DownloadRequest) Response { return OK(Body{"success": true, "message": "Download started"}) },
		progress:  func(string) Response { return OK(Body{}) },
		calls:     make(map[string]int),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/video-info", s.handleVideoInfo)
	mux.HandleFunc("/api/download", s.handleDownload)
	mux.HandleFunc("/api/progress/", s.handleProgress)
	s.Server = httptest.NewServer(mux)
	return s
}

// BaseURL is the backend base URL to configure clients with.
func (s *Server) BaseURL() string {
	return s.URL + "/api"
}

func (s *Server) SetVideoInfo(f func(url string) Response) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.videoInfo = f
}

// HoldVideoInfo makes /video-info requests wait until the returned release function is called.
func (s *Server) HoldVideoInfo() (release func()) {
	gate := make(chan struct{})
	s.mu.Lock()
	s.videoInfoGate = gate
	s.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			s.videoInfoGate = nil
			s.mu.Unlock()
			close(gate)
		})
	}
}

func (s *Server) SetDownload(f func(req DownloadRequest) Response) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.download = f
}

// SetProgress sets the fallback /progress response, used once the queue is empty.
func (s *Server) SetProgress(f func(videoID string) Response) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress = f
}

// QueueProgress appends responses that /progress returns in order, before falling back to SetProgress.
func (s *Server) QueueProgress(responses ...Response) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progressQueue = append(s.progressQueue, responses...)
}

// Calls returns how many requests an endpoint ("video-info", "download" or "progress") has received.
func (s *Server) Calls(endpoint string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[endpoint]
}

func (s *Server) Lookups() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.lookups...)
}

func (s *Server) Downloads() []DownloadRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]DownloadRequest(nil), s.downloads...)
}

// ProgressVideoIDs lists the video ID of every /progress request, in order.
func (s *Server) ProgressVideoIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.progressIDs...)
}

func (s *Server) handleVideoInfo(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL string `json:"url"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)
	s.mu.Lock()
	s.calls["video-info"]++
	s.lookups = append(s.lookups, req.URL)
	f := s.videoInfo
	gate := s.videoInfoGate
	s.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-r.Context().Done():
			return
		}
	}
	writeResponse(w, f(req.URL))
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	var req DownloadRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	s.mu.Lock()
	s.calls["download"]++
	s.downloads = append(s.downloads, req)
	f := s.download
	s.mu.Unlock()
	writeResponse(w, f(req))
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	videoID := strings.TrimPrefix(r.URL.Path, "/api/progress/")
	s.mu.Lock()
	s.calls["progress"]++
	s.progressIDs = append(s.progressIDs, videoID)
	var resp Response
	if len(s.progressQueue) > 0 {
		resp = s.progressQueue[0]
		s.progressQueue = s.progressQueue[1:]
	} else {
		resp = s.progress(videoID)
	}
	s.mu.Unlock()
	writeResponse(w, resp)
}

func writeResponse(w http.ResponseWriter, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	status := resp.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	if resp.Body == nil && resp.RawBody != "" {
		_, _ = w.Write([]byte(resp.RawBody))
		return
	}
	_ = json.NewEncoder(w).Encode(resp.Body)
}
