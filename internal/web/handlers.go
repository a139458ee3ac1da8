package web

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/user/llmbench/internal/agent"
	"github.com/user/llmbench/internal/catalog"
	"github.com/user/llmbench/internal/compare"
	"github.com/user/llmbench/internal/history"
	"github.com/user/llmbench/pkg/llm"
)

const defaultHistoryLimit = 20

func errorJSON(c *gin.Context, status int, err error) {
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"agent":   s.agent != nil,
		"history": s.store != nil,
	})
}

type askResponse struct {
	Question    string `json:"question"`
	Answer      string `json:"answer"`
	Mode        string `json:"mode"`
	FellBack    bool   `json:"fell_back"`
	VisionError string `json:"vision_error,omitempty"`
	PageContext bool   `json:"page_context,omitempty"`
	ElapsedMS   int64  `json:"elapsed_ms"`
}

func (s *Server) handleAsk(c *gin.Context) {
	if s.agent == nil {
		errorJSON(c, http.StatusServiceUnavailable, errors.New("agent not configured"))
		return
	}
	question := strings.TrimSpace(c.PostForm("question"))
	if question == "" {
		errorJSON(c, http.StatusBadRequest, agent.ErrEmptyQuestion)
		return
	}

	img, page, err := s.formImage(c)
	if err != nil {
		errorJSON(c, http.StatusBadRequest, err)
		return
	}
	useVision := c.DefaultPostForm("mode", string(agent.ModeVision)) != string(agent.ModeText)

	ans, err := s.agent.Answer(c.Request.Context(), agent.WithPageContext(question, page), img, useVision)
	if err != nil {
		requestLogger(c, s.log).Errorw("agent answer failed", "error", err)
		errorJSON(c, http.StatusBadGateway, err)
		return
	}
	c.JSON(http.StatusOK, askResponse{
		Question:    question,
		Answer:      ans.Text,
		Mode:        string(ans.Mode),
		FellBack:    ans.FellBack,
		VisionError: ans.VisionError(),
		PageContext: page != "",
		ElapsedMS:   ans.Elapsed.Milliseconds(),
	})
}

func (s *Server) handleAnalyze(c *gin.Context) {
	if s.agent == nil {
		errorJSON(c, http.StatusServiceUnavailable, errors.New("agent not configured"))
		return
	}
	img, _, err := s.formImage(c)
	if err != nil {
		errorJSON(c, http.StatusBadRequest, err)
		return
	}
	if img == nil {
		errorJSON(c, http.StatusBadRequest, agent.ErrNoImage)
		return
	}

	analyses, err := s.agent.AnalyzeComprehensive(c.Request.Context(), img)
	if err != nil {
		errorJSON(c, http.StatusBadGateway, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"analyses": analyses})
}

// formImage reads the uploaded "image" file, or fetches "image_url". An
// URL that serves a web page yields its text instead of an image.
func (s *Server) formImage(c *gin.Context) (*llm.Image, string, error) {
	if fh, err := c.FormFile("image"); err == nil {
		if s.limits.MaxBytes > 0 && fh.Size > s.limits.MaxBytes {
			return nil, "", fmt.Errorf("%w: %s", agent.ErrTooLarge, fh.Filename)
		}
		f, err := fh.Open()
		if err != nil {
			return nil, "", fmt.Errorf("open upload: %w", err)
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			return nil, "", fmt.Errorf("read upload: %w", err)
		}
		img, err := agent.DecodeImage(data, fh.Filename, s.limits)
		return img, "", err
	}

	if u := strings.TrimSpace(c.PostForm("image_url")); u != "" {
		return agent.FetchImage(c.Request.Context(), s.client, u, s.limits)
	}
	return nil, "", nil
}

func (s *Server) handleAgentInfo(c *gin.Context) {
	if s.agent == nil {
		errorJSON(c, http.StatusServiceUnavailable, errors.New("agent not configured"))
		return
	}
	c.JSON(http.StatusOK, s.agent.ModelInfo())
}

type queryRequest struct {
	Query     string `json:"query"`
	Provider  string `json:"provider"`
	ModelType string `json:"model_type"`
	Model     string `json:"model"`
}

func (s *Server) handleQuery(c *gin.Context) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, errors.New("invalid JSON"))
		return
	}
	if req.Provider == "" {
		req.Provider = string(catalog.OpenAI)
	}
	p, err := catalog.ParseProvider(req.Provider)
	if err != nil {
		errorJSON(c, http.StatusBadRequest, err)
		return
	}
	mt := catalog.Instruct
	if req.ModelType != "" {
		if mt, err = catalog.ParseModelType(req.ModelType); err != nil {
			errorJSON(c, http.StatusBadRequest, err)
			return
		}
	}

	res, err := s.svc.Query(c.Request.Context(), compare.Request{
		Query:     req.Query,
		Provider:  p,
		ModelType: mt,
		Model:     req.Model,
	})
	if err != nil {
		errorJSON(c, statusFor(err), err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type compareRequest struct {
	Query      string   `json:"query"`
	Providers  []string `json:"providers"`
	ModelTypes []string `json:"model_types"`
}

func (s *Server) handleCompare(c *gin.Context) {
	var req compareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, errors.New("invalid JSON"))
		return
	}

	var providers []catalog.Provider
	for _, name := range req.Providers {
		p, err := catalog.ParseProvider(name)
		if err != nil {
			errorJSON(c, http.StatusBadRequest, err)
			return
		}
		providers = append(providers, p)
	}
	var types []catalog.ModelType
	for _, name := range req.ModelTypes {
		mt, err := catalog.ParseModelType(name)
		if err != nil {
			errorJSON(c, http.StatusBadRequest, err)
			return
		}
		types = append(types, mt)
	}

	cmp, err := s.svc.CompareAll(c.Request.Context(), req.Query, providers, types)
	if err != nil {
		errorJSON(c, statusFor(err), err)
		return
	}
	if cmp.Results == nil {
		cmp.Results = []*compare.Result{}
	}
	c.JSON(http.StatusOK, cmp)
}

func (s *Server) handleHistory(c *gin.Context) {
	if s.store == nil {
		errorJSON(c, http.StatusServiceUnavailable, errors.New("history not configured"))
		return
	}
	limit := defaultHistoryLimit
	if q := c.Query("limit"); q != "" {
		if n, err := strconv.Atoi(q); err == nil && n > 0 {
			limit = n
		}
	}
	recs, err := s.store.List(c.Request.Context(), limit)
	if err != nil {
		requestLogger(c, s.log).Errorw("list history failed", "error", err)
		errorJSON(c, http.StatusInternalServerError, errors.New("internal server error"))
		return
	}
	if recs == nil {
		recs = []*history.Record{}
	}
	c.JSON(http.StatusOK, recs)
}

func (s *Server) handleHistoryEntry(c *gin.Context) {
	if s.store == nil {
		errorJSON(c, http.StatusServiceUnavailable, errors.New("history not configured"))
		return
	}
	rec, err := s.store.Get(c.Request.Context(), c.Param("id"))
	switch {
	case errors.Is(err, history.ErrNotFound):
		errorJSON(c, http.StatusNotFound, err)
	case errors.Is(err, history.ErrAmbiguous):
		errorJSON(c, http.StatusBadRequest, err)
	case err != nil:
		errorJSON(c, http.StatusInternalServerError, errors.New("internal server error"))
	default:
		c.JSON(http.StatusOK, rec)
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, compare.ErrEmptyQuery), errors.Is(err, catalog.ErrNoModel):
		return http.StatusBadRequest
	case errors.Is(err, compare.ErrNoProviders):
		return http.StatusServiceUnavailable
	case llm.IsConfigError(err):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
