package contracts

import "github.com/julienschmidt/httprouter"

// Handler is implemented by every service handler that can attach its
// routes to a router.
type Handler interface {
	RegisterRoutes(*httprouter.Router)
}
