package router

import (
	"net/http"

	"techmarks/internal/handlers"
	"techmarks/internal/middleware"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Bookmark *handlers.BookmarkHandler
	Auth     *handlers.AuthHandler
	User     *handlers.UserHandler
	SEO      *handlers.SEOHandler
}

// RegisterRoutes expects sessions and middleware.LoadUser to be installed
// on r already.
func RegisterRoutes(r *gin.Engine, h Handlers) {
	r.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/bookmarks")
	})

	// 公共路由 (Public Routes)
	r.GET("/bookmarks", h.Bookmark.List)                                 // 书签列表
	r.GET("/bookmarks/category/:category_id", h.Bookmark.ListByCategory) // 分类下的书签

	r.GET("/robots.txt", h.SEO.RobotsTxt)   // robots.txt
	r.GET("/sitemap.xml", h.SEO.SitemapXML) // 站点地图

	r.GET("/signup", h.Auth.ShowRegister) // 注册页面
	r.POST("/signup", h.Auth.Register)    // 提交注册
	r.GET("/login", h.Auth.ShowLogin)     // 登录页面
	r.POST("/login", h.Auth.Login)        // 提交登录
	r.GET("/logout", h.Auth.Logout)       // 退出登录

	// 受保护路由 (Protected Routes)
	authorized := r.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.GET("/bookmark-create", h.Bookmark.ShowCreate)   // 创建书签页面
		authorized.POST("/bookmarks", h.Bookmark.Create)            // 提交创建
		authorized.GET("/bookmark-edit/:id", h.Bookmark.ShowEdit)   // 编辑书签页面
		authorized.PUT("/bookmarks/:id", h.Bookmark.Update)         // 提交更新
		authorized.POST("/bookmarks/:id", h.Bookmark.Update)        // 表单提交更新
		authorized.DELETE("/bookmarks/:id", h.Bookmark.Delete)      // 删除书签
		authorized.POST("/bookmarks/:id/delete", h.Bookmark.Delete) // 表单删除

		authorized.GET("/user/profile", h.User.Profile) // 我的书签
	}
}
