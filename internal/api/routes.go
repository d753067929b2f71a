package api

import (
	"net/http"

	"github.com/JaimeStill/lading/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	runtime *Runtime,
) {
	routes.Register(
		mux,
		domain.Products.Handler().Routes(),
		domain.Classifications.Handler().Routes(),
		domain.Links.Handler().Routes(),
		domain.Corpus.Handler(runtime.MaxUploadSize).Routes(),
		domain.Suggest.Handler().Routes(),
		newSourceHandler(runtime.Storage, runtime.Logger).routes(),
	)
}
