package httpx

import (
	"errors"
	"math"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPerPage = 10
	MaxPerPage     = 100
)

var (
	ErrBadID   = errors.New("invalid id")
	ErrBadPage = errors.New("invalid page")
)

// IDParam parses a positive integer path parameter.
func IDParam(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrBadID
	}
	return id, nil
}

type Page struct {
	Page    int
	PerPage int
}

func (p Page) Limit() int  { return p.PerPage }
func (p Page) Offset() int { return (p.Page - 1) * p.PerPage }

// PageParams reads page (from 1) and perpage (1..MaxPerPage) query parameters.
func PageParams(c *gin.Context) (Page, error) {
	p := Page{Page: 1, PerPage: DefaultPerPage}
	if s := c.Query("page"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			return Page{}, ErrBadPage
		}
		p.Page = n
	}
	if s := c.Query("perpage"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			return Page{}, ErrBadPage
		}
		if n > MaxPerPage {
			n = MaxPerPage
		}
		p.PerPage = n
	}
	// Offset must not overflow.
	if p.Page > math.MaxInt/p.PerPage {
		return Page{}, ErrBadPage
	}
	return p, nil
}

// BoolQuery parses true/false/1/0. ok is false when the parameter is absent.
func BoolQuery(c *gin.Context, name string) (val bool, ok bool, err error) {
	s, present := c.GetQuery(name)
	if !present || s == "" {
		return false, false, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, false, err
	}
	return b, true, nil
}
