package handlers

import (
	"net/http"

	"collegium_backend/internal/appErrors"
	"collegium_backend/internal/middleware"
	"collegium_backend/internal/models"
	"collegium_backend/internal/services"

	"github.com/gin-gonic/gin"
)

type ContentHandler struct {
	contentService services.ContentService
}

func NewContentHandler(contentService services.ContentService) *ContentHandler {
	return &ContentHandler{contentService: contentService}
}

func (h *ContentHandler) RegisterRoutes(r *gin.RouterGroup, auth, requireStudent, requireCompany gin.HandlerFunc) {
	posts := r.Group("/posts")
	posts.Use(auth, requireStudent)
	{
		posts.POST("", h.CreatePost)
	}

	projects := r.Group("/projects")
	projects.Use(auth, requireStudent)
	{
		projects.POST("", h.CreateProject)
	}

	events := r.Group("/events")
	events.Use(auth, requireStudent)
	{
		events.POST("/:eventId/register", h.RegisterForEvent)
	}

	jobs := r.Group("/jobs")
	jobs.Use(auth, requireCompany)
	{
		jobs.POST("", h.CreateJob)
	}
}

type createPostRequest struct {
	Content   string `json:"content" binding:"required"`
	ImageURL  string `json:"image_url"`
	CollegeID string `json:"college_id"`
}

func (h *ContentHandler) CreatePost(c *gin.Context) {
	subjectID, _ := middleware.SubjectFromContext(c)

	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		appErrors.HandleError(c, appErrors.ErrValidationFailed.WithDetails(err.Error()))
		return
	}

	post := &models.Post{
		UserID:    subjectID,
		CollegeID: req.CollegeID,
		Content:   req.Content,
		ImageURL:  req.ImageURL,
	}
	if err := h.contentService.CreatePost(c.Request.Context(), subjectID, post); err != nil {
		appErrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Post created successfully", "post": post})
}

type createProjectRequest struct {
	Name               string `json:"name" binding:"required"`
	Description        string `json:"description" binding:"required"`
	GithubRepo         string `json:"github_repo"`
	AllowCollaboration *bool  `json:"allow_collaboration"`
	CollegeID          string `json:"college_id"`
}

func (h *ContentHandler) CreateProject(c *gin.Context) {
	subjectID, _ := middleware.SubjectFromContext(c)

	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		appErrors.HandleError(c, appErrors.ErrValidationFailed.WithDetails(err.Error()))
		return
	}

	project := &models.Project{
		UserID:             subjectID,
		CollegeID:          req.CollegeID,
		Name:               req.Name,
		Description:        req.Description,
		GithubRepo:         req.GithubRepo,
		AllowCollaboration: true,
	}
	if req.AllowCollaboration != nil {
		project.AllowCollaboration = *req.AllowCollaboration
	}
	if err := h.contentService.CreateProject(c.Request.Context(), subjectID, project); err != nil {
		appErrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Project created successfully", "project": project})
}

func (h *ContentHandler) RegisterForEvent(c *gin.Context) {
	subjectID, _ := middleware.SubjectFromContext(c)
	eventID := c.Param("eventId")

	registration, err := h.contentService.RegisterForEvent(c.Request.Context(), subjectID, eventID)
	if err != nil {
		appErrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Registered for event successfully", "registration": registration})
}

type createJobRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Location    string `json:"location"`
}

func (h *ContentHandler) CreateJob(c *gin.Context) {
	subjectID, _ := middleware.SubjectFromContext(c)

	var req createJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		appErrors.HandleError(c, appErrors.ErrValidationFailed.WithDetails(err.Error()))
		return
	}

	job := &models.Job{
		CompanyID:   subjectID,
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		Active:      true,
	}
	if err := h.contentService.CreateJob(c.Request.Context(), subjectID, job); err != nil {
		appErrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Job posted successfully", "job": job})
}
