package graph

import (
	"encoding/json"
	"fmt"
	"net/http"

	errs "graphkit/pkg/errors"
)

// errorEnvelope is the {"error":{...}} body of a failed Graph call.
type errorEnvelope struct {
	Error *struct {
		Message   string `json:"message"`
		Type      string `json:"type"`
		Code      int    `json:"code"`
		Subcode   int    `json:"error_subcode"`
		FBTraceID string `json:"fbtrace_id"`
	} `json:"error"`
}

// legacyInstagramError is the flat error body of api.instagram.com.
type legacyInstagramError struct {
	ErrorType    string `json:"error_type"`
	Code         int    `json:"code"`
	ErrorMessage string `json:"error_message"`
}

// Graph throttling codes.
var throttleCodes = map[int]bool{4: true, 17: true, 32: true, 613: true}

// translateError converts a non-2xx response into a typed error.
func translateError(resp *Response) *errs.Error {
	var env errorEnvelope
	if err := json.Unmarshal([]byte(resp.Body), &env); err == nil && env.Error != nil {
		e := env.Error
		apiErr := &errs.Error{
			Type:    errs.ErrorTypeGraph,
			Message: e.Message,
			Code:    e.Code,
			Subcode: e.Subcode,
			TraceID: e.FBTraceID,
		}
		switch {
		case e.Type == "OAuthException" || e.Code == 190:
			apiErr.Type = errs.ErrorTypeOAuth
		case throttleCodes[e.Code]:
			apiErr.Type = errs.ErrorTypeRateLimit
		case resp.StatusCode >= 500:
			apiErr.Type = errs.ErrorTypeServerError
		}
		return apiErr
	}

	var legacy legacyInstagramError
	if err := json.Unmarshal([]byte(resp.Body), &legacy); err == nil && legacy.ErrorType != "" {
		apiErr := &errs.Error{
			Type:    errs.ErrorTypeGraph,
			Message: legacy.ErrorMessage,
			Code:    legacy.Code,
		}
		if legacy.ErrorType == "OAuthException" {
			apiErr.Type = errs.ErrorTypeOAuth
		}
		return apiErr
	}

	apiErr := &errs.Error{
		Message: fmt.Sprintf("unexpected status %d", resp.StatusCode),
		Code:    resp.StatusCode,
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		apiErr.Type = errs.ErrorTypeNotFound
	case resp.StatusCode == http.StatusTooManyRequests:
		apiErr.Type = errs.ErrorTypeRateLimit
	case resp.StatusCode >= 500:
		apiErr.Type = errs.ErrorTypeServerError
	default:
		apiErr.Type = errs.ErrorTypeUnknown
	}
	return apiErr
}
