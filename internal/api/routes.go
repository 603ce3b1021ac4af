package api

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes 注册编辑器路由与 /v1 API。
func RegisterRoutes(router *gin.Engine, deps Deps) {
	cfg := deps.Config

	// 接口为 nil 时保持 nil，避免持有类型化的空指针
	var (
		counter   redisRateCounter
		publisher notifyPublisher
	)
	if deps.Redis != nil {
		counter = deps.Redis
		publisher = deps.Redis
	}

	editorHandler := NewEditorHandler(deps.Store, deps.Objects)
	resumeHandler := NewResumeHandler(deps.Store, deps.Objects)
	sectionHandler := NewSectionHandler(deps.Store)
	pageHandler := NewPageHandler(deps.Store, publisher, deps.Logger)
	printHandler := NewPrintHandler(deps.Store, deps.Queue, deps.Objects, cfg.Print.Enabled, cfg.Print.Timeout)
	assetHandler := NewAssetHandler(deps.Store, deps.Objects, counter, deps.Logger, cfg.Clamd.Address)
	wsHandler := NewWsHandler(deps.Redis, deps.Store, deps.Logger, cfg.API.AllowedOrigins)

	router.GET("/", editorHandler.Root)
	router.GET("/editor/:type/:sectionId", editorHandler.Section)
	router.GET("/preview", editorHandler.Preview)

	v1 := router.Group("/v1")
	{
		v1.GET("/ws", wsHandler.HandleConnection)

		dates := v1.Group("/dates")
		{
			dates.GET("/formats", ListDateFormats)
			dates.GET("/format", PreviewDate)
		}

		assets := v1.Group("/assets")
		{
			assets.POST("/avatar", assetHandler.UploadAvatar)
			assets.GET("/avatar", assetHandler.GetAvatarURL)
		}

		resumes := v1.Group("/resumes")
		{
			resumes.GET("", resumeHandler.ListResumes)
			resumes.POST("", resumeHandler.CreateResume)
			resumes.POST("/import", resumeHandler.ImportResume)
			resumes.GET("/collection", resumeHandler.GetCollection)
			resumes.GET("/current", resumeHandler.GetCurrent)
			resumes.PUT("/current", resumeHandler.SetCurrent)

			one := resumes.Group("/:id")
			{
				one.GET("", resumeHandler.GetResume)
				one.PATCH("", resumeHandler.UpdateResume)
				one.DELETE("", resumeHandler.DeleteResume)
				one.GET("/projection", resumeHandler.GetProjection)
				one.POST("/drag", sectionHandler.DragSection)

				one.POST("/sections", sectionHandler.AddSection)
				section := one.Group("/sections/:sectionId")
				{
					section.PATCH("", sectionHandler.PatchSection)
					section.DELETE("", sectionHandler.RemoveSection)
					section.PUT("/content", sectionHandler.PutContent)
					section.PUT("/date-format", sectionHandler.PutDateFormat)
					section.PATCH("/basic-info", sectionHandler.PatchBasicInfo)
					section.PUT("/text", sectionHandler.PutText)

					section.POST("/items", sectionHandler.AddItem)
					section.POST("/items/drag", sectionHandler.DragItem)
					section.PATCH("/items/:itemId", sectionHandler.UpdateItem)
					section.DELETE("/items/:itemId", sectionHandler.RemoveItem)
				}

				one.POST("/pages", pageHandler.AddPage)
				one.DELETE("/pages/:page", pageHandler.RemovePage)
				one.PUT("/pages/multi", pageHandler.SetMultiPage)

				one.GET("/page-assignments", pageHandler.GetAssignments)
				one.POST("/page-assignments", pageHandler.StageAssignment)
				one.POST("/page-assignments/apply", pageHandler.ApplyAssignments)
				one.POST("/page-assignments/auto", pageHandler.AutoAssign)
				one.POST("/page-assignments/reset", pageHandler.ResetAssignments)

				one.POST("/avatar", assetHandler.UploadAvatar)
				one.GET("/avatar", assetHandler.GetAvatarURL)

				one.POST("/print", printHandler.RequestPrint)
				one.GET("/print", printHandler.GetPrintStatus)
				one.GET("/print/link", printHandler.GetDownloadLink)
			}
		}
	}
}
