package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/MikeMC777/littlelemon/internal/cache"
	"github.com/MikeMC777/littlelemon/internal/cart"
	"github.com/MikeMC777/littlelemon/internal/config"
	_ "github.com/MikeMC777/littlelemon/internal/docs"
	"github.com/MikeMC777/littlelemon/internal/health"
	"github.com/MikeMC777/littlelemon/internal/httpx"
	"github.com/MikeMC777/littlelemon/internal/menu"
	"github.com/MikeMC777/littlelemon/internal/order"
	"github.com/MikeMC777/littlelemon/internal/user"
)

type deps struct {
	cfg    config.Config
	log    *zap.Logger
	users  *user.Service
	menu   menu.Repository
	carts  cart.Repository
	orders order.Repository
	store  cache.Store
	pinger health.Pinger
}

func newRouter(d deps) *gin.Engine {
	if d.cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	httpx.RegisterValidators()

	r := gin.New()
	// ClientIP keys the anonymous throttle; only listed proxies may override it.
	if err := r.SetTrustedProxies(d.cfg.TrustedProxies); err != nil {
		d.log.Warn("invalid TRUSTED_PROXIES, trusting none", zap.Error(err))
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(
		ginzap.RecoveryWithZap(d.log, true),
		httpx.RequestID(),
		httpx.Logger(d.log),
		httpx.Metrics(),
		cors.New(cors.Config{
			AllowAllOrigins: true,
			AllowMethods:    []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:    []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
			ExposeHeaders:   []string{"X-Request-ID", "Retry-After"},
			MaxAge:          12 * time.Hour,
		}),
	)

	r.GET("/healthz", healthzHandler(d.pinger))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	mc := newMenuCache(d.store, d.cfg.MenuCacheTTL, d.log)

	api := r.Group("/api")
	api.Use(
		httpx.Authenticate(d.users),
		httpx.Throttle(d.store, httpx.ThrottleConfig{
			Anon:   d.cfg.ThrottleAnon,
			User:   d.cfg.ThrottleUser,
			Window: time.Minute,
		}, d.log),
	)

	// users & tokens
	api.POST("/users", registerHandler(d.users))
	api.GET("/users/users/me", httpx.RequireAuth(), meHandler())
	api.POST("/token/login", loginHandler(d.users))

	// categories
	cat := api.Group("/category", httpx.RequireManager())
	cat.GET("", listCategoriesHandler(d.menu))
	cat.POST("", createCategoryHandler(d.menu, mc))
	cat.GET("/:id", getCategoryHandler(d.menu))
	cat.PUT("/:id", replaceCategoryHandler(d.menu, mc))
	cat.PATCH("/:id", patchCategoryHandler(d.menu, mc))
	cat.DELETE("/:id", deleteCategoryHandler(d.menu, mc))

	// menu items
	items := api.Group("/menu-items", httpx.ManagerForWrites())
	items.GET("", listItemsHandler(d.menu, mc))
	items.POST("", createItemHandler(d.menu, mc))
	items.GET("/:id", getItemHandler(d.menu))
	items.PUT("/:id", replaceItemHandler(d.menu, mc))
	items.PATCH("/:id", patchItemHandler(d.menu, mc))
	items.DELETE("/:id", deleteItemHandler(d.menu, mc))

	// groups
	groups := api.Group("/groups", httpx.RequireManager())
	for path, name := range map[string]string{
		"/managers/users":      user.GroupManager,
		"/delivery-crew/users": user.GroupDeliveryCrew,
	} {
		g := groups.Group(path)
		g.GET("", listMembersHandler(d.users, name))
		g.POST("", addMemberHandler(d.users, name))
		g.GET("/:id", getMemberHandler(d.users, name))
		g.DELETE("/:id", removeMemberHandler(d.users, name))
	}

	// cart
	c := api.Group("/cart/menu-items", httpx.RequireAuth())
	c.GET("", listCartHandler(d.carts))
	c.POST("", addToCartHandler(d.carts, d.menu))
	c.DELETE("", clearCartHandler(d.carts))
	c.DELETE("/:menuitem_id", removeFromCartHandler(d.carts))

	// orders
	o := api.Group("/orders", httpx.RequireAuth())
	o.GET("", listOrdersHandler(d.orders))
	o.POST("", createOrderHandler(d.orders))
	o.GET("/:id", getOrderHandler(d.orders))
	o.PUT("/:id", updateOrderHandler(d.orders, d.users))
	o.PATCH("/:id", updateOrderHandler(d.orders, d.users))
	o.DELETE("/:id", httpx.RequireManager(), deleteOrderHandler(d.orders))

	return r
}

// healthzHandler answers 503 while the database is unreachable. It lives
// outside /api and is left out of the API document.
func healthzHandler(p health.Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if p != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := p.Ping(ctx); err != nil {
				httpx.Abort(c, http.StatusServiceUnavailable, "database unavailable")
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
