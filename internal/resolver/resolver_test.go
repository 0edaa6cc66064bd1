package resolver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/rfcpaths/internal/domain"
	applog "github.com/mmcdole/rfcpaths/internal/log"
)

const samplePath = "public/rfc/bibxml/reference.RFC.2119.xml"

func newServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func resolvedHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set(HeaderMethods, "manual;auto")
	w.Header().Set(HeaderOutcomes, "cfg1,;cfg2,timeout")
	w.Write([]byte("<reference anchor=\"RFC2119\"/>"))
}

func TestResolve_Brief(t *testing.T) {
	srv, hits := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/"+samplePath, r.URL.Path)
		resolvedHandler(w, r)
	})

	r := New(srv.URL, "", Options{Logger: applog.NullLogger()})
	outcome, err := r.Resolve(context.Background(), samplePath, domain.ResolveOptions{})
	require.NoError(t, err)

	assert.Equal(t, "manual", outcome.PrimaryMethod)
	assert.Equal(t, "manual", outcome.SucceededMethod)
	assert.Nil(t, outcome.Methods)
	assert.Empty(t, outcome.ResolvedXML)
	assert.False(t, outcome.Compared)
	assert.Equal(t, int32(1), hits.Load())
}

func TestResolve_Detailed(t *testing.T) {
	srv, hits := newServer(t, resolvedHandler)

	r := New(srv.URL, "", Options{Logger: applog.NullLogger()})
	outcome, err := r.Resolve(context.Background(), samplePath, domain.ResolveOptions{Detailed: true})
	require.NoError(t, err)

	assert.Len(t, outcome.Methods, 2)
	assert.Equal(t, "<reference anchor=\"RFC2119\"/>", outcome.ResolvedXML)
	assert.Equal(t, int32(1), hits.Load(), "detailed must not add requests")
}

func TestResolve_Compare(t *testing.T) {
	primary, primaryHits := newServer(t, resolvedHandler)
	reference, referenceHits := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/"+samplePath, r.URL.Path)
		w.Write([]byte("<reference anchor=\"RFC2119\" ref/>"))
	})

	r := New(primary.URL, reference.URL, Options{Logger: applog.NullLogger()})
	outcome, err := r.Resolve(context.Background(), samplePath, domain.ResolveOptions{Detailed: true, Compare: true})
	require.NoError(t, err)

	assert.True(t, outcome.Compared)
	require.NotNil(t, outcome.ReferenceXML)
	assert.Equal(t, "<reference anchor=\"RFC2119\" ref/>", *outcome.ReferenceXML)
	assert.Equal(t, int32(1), primaryHits.Load())
	assert.Equal(t, int32(1), referenceHits.Load())
}

func TestResolve_CompareFailureIsSwallowed(t *testing.T) {
	primary, _ := newServer(t, resolvedHandler)
	reference, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	r := New(primary.URL, reference.URL, Options{Logger: applog.NullLogger()})
	outcome, err := r.Resolve(context.Background(), samplePath, domain.ResolveOptions{Compare: true})
	require.NoError(t, err)

	assert.True(t, outcome.Compared)
	assert.Nil(t, outcome.ReferenceXML)
	assert.Equal(t, "manual", outcome.SucceededMethod)
}

func TestResolve_PrimaryErrors(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		srv, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})
		r := New(srv.URL, "", Options{Logger: applog.NullLogger()})
		_, err := r.Resolve(context.Background(), samplePath, domain.ResolveOptions{})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("server error", func(t *testing.T) {
		srv, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})
		r := New(srv.URL, "", Options{Logger: applog.NullLogger()})
		_, err := r.Resolve(context.Background(), samplePath, domain.ResolveOptions{})
		require.Error(t, err)
		assert.True(t, IsStatus(err, http.StatusInternalServerError))
	})

	t.Run("offline", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		r := New(url, "", Options{Logger: applog.NullLogger()})
		_, err := r.Resolve(context.Background(), samplePath, domain.ResolveOptions{})
		assert.ErrorIs(t, err, domain.ErrServerOffline)
	})

	t.Run("primary failure fails compare too", func(t *testing.T) {
		srv, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
		reference, _ := newServer(t, resolvedHandler)
		r := New(srv.URL, reference.URL, Options{Logger: applog.NullLogger()})
		outcome, err := r.Resolve(context.Background(), samplePath, domain.ResolveOptions{Compare: true})
		require.Error(t, err)
		assert.Nil(t, outcome)
	})
}

func TestResolve_MalformedHeadersStillResolve(t *testing.T) {
	srv, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(HeaderMethods, "manual;auto")
		w.Header().Set(HeaderOutcomes, "nonsense;cfg,")
	})

	r := New(srv.URL, "", Options{Logger: applog.NullLogger()})
	outcome, err := r.Resolve(context.Background(), samplePath, domain.ResolveOptions{})
	require.NoError(t, err)
	assert.Equal(t, "auto", outcome.SucceededMethod)
}

func TestResolver_URL(t *testing.T) {
	r := New("https://bib.example.org/", "", Options{})
	got, err := r.URL("/public/rfc/bibxml/reference.RFC.2119.xml")
	require.NoError(t, err)
	assert.Equal(t, "https://bib.example.org/public/rfc/bibxml/reference.RFC.2119.xml", got)
}
