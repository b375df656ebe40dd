package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"geosynth.app/pkg/errors"
	"geosynth.app/pkg/validation"
)

// CountryListResponse wraps list results with their count
type CountryListResponse struct {
	Count     int         `json:"count"`
	Countries interface{} `json:"countries"`
}

type countryURI struct {
	Code string `uri:"code" binding:"required,countrycode"`
}

type searchQuery struct {
	Q string `form:"q" binding:"required"`
}

func (s *HTTPServerAdapter) bindCode(c *gin.Context) (string, bool) {
	var uri countryURI
	if err := c.ShouldBindUri(&uri); err != nil {
		s.handleError(c, errors.NewValidationError("code must be an ISO 3166 alpha-2 or alpha-3 code"))
		return "", false
	}
	return validation.NormalizeCountryCode(uri.Code), true
}

// listCountries handles GET /api/countries, optionally filtered by region
func (s *HTTPServerAdapter) listCountries(c *gin.Context) {
	ctx := c.Request.Context()
	region, filtered := c.GetQuery("region")

	var (
		countries interface{}
		count     int
	)
	if filtered {
		if !validation.IsNotEmpty(region) {
			s.handleError(c, errors.NewValidationError("region cannot be empty"))
			return
		}
		list, err := s.countries.GetCountriesByRegion(ctx, region)
		if err != nil {
			s.handleError(c, err)
			return
		}
		countries, count = list, len(list)
	} else {
		list, err := s.countries.GetAllCountries(ctx)
		if err != nil {
			s.handleError(c, err)
			return
		}
		countries, count = list, len(list)
	}

	c.JSON(http.StatusOK, CountryListResponse{Count: count, Countries: countries})
}

// searchCountries handles GET /api/countries/search?q=
func (s *HTTPServerAdapter) searchCountries(c *gin.Context) {
	var query searchQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		s.handleError(c, errors.NewValidationError("q parameter is required"))
		return
	}

	countries, err := s.countries.SearchCountries(c.Request.Context(), query.Q)
	if err != nil {
		s.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, CountryListResponse{Count: len(countries), Countries: countries})
}

// getCountry handles GET /api/countries/:code
func (s *HTTPServerAdapter) getCountry(c *gin.Context) {
	code, ok := s.bindCode(c)
	if !ok {
		return
	}

	country, err := s.countries.GetCountry(c.Request.Context(), code)
	if err != nil {
		s.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, country)
}

// getCountryEconomics handles GET /api/countries/:code/economics
func (s *HTTPServerAdapter) getCountryEconomics(c *gin.Context) {
	code, ok := s.bindCode(c)
	if !ok {
		return
	}

	economics, err := s.countries.GetCountryEconomics(c.Request.Context(), code)
	if err != nil {
		s.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, economics)
}

// getCountryProfile handles GET /api/countries/:code/profile
func (s *HTTPServerAdapter) getCountryProfile(c *gin.Context) {
	code, ok := s.bindCode(c)
	if !ok {
		return
	}

	profile, err := s.profiles.GetAggregatedProfile(c.Request.Context(), code)
	if err != nil {
		s.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// getCountryNeighbours handles GET /api/countries/:code/neighbours
func (s *HTTPServerAdapter) getCountryNeighbours(c *gin.Context) {
	code, ok := s.bindCode(c)
	if !ok {
		return
	}

	neighbours, err := s.countries.GetNeighbours(c.Request.Context(), code)
	if err != nil {
		s.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, CountryListResponse{Count: len(neighbours), Countries: neighbours})
}
