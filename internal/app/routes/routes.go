package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/cpne/stages/internal/app/controllers"
	"github.com/cpne/stages/internal/app/services"
)

// Controllers groups the controllers the router dispatches to
type Controllers struct {
	Placement *controllers.PlacementController
	Workload  *controllers.WorkloadController
	Document  *controllers.DocumentController
	Import    *controllers.ImportController
	Candidate *controllers.CandidateController
	Admin     *controllers.AdminController
}

// SetupRouter configures all application routes. Paths keep the trailing slash the
// attribution screen posts to.
func SetupRouter(router *gin.Engine, c Controllers) {
	// --- Attribution screen ---
	router.GET("/attribution/", c.Placement.Attribution)

	sections := router.Group("/section/:id")
	{
		sections.GET("/periods/", c.Placement.SectionPeriods)
		sections.GET("/classes/", c.Placement.SectionClasses)
	}

	periods := router.Group("/period/:id")
	{
		periods.GET("/students/", c.Placement.PeriodStudents)
		periods.GET("/corporations/", c.Placement.PeriodCorporations)
		periods.GET("/trainings/", c.Placement.PeriodTrainings)
	}

	router.GET("/corporation/:id/contacts/", c.Placement.CorporationContacts)

	training := router.Group("/training")
	{
		training.POST("/new/", c.Placement.NewTraining)
		training.POST("/del/", c.Placement.DeleteTraining)
	}

	// --- Workload and documents ---
	router.GET("/teacher/:id/activity/", c.Workload.TeacherActivity)
	router.GET("/stages/export/", c.Document.ExportStages)

	students := router.Group("/students/export")
	{
		students.GET("/general/", c.Document.ExportGeneral)
		students.GET("/ortra/", c.Document.ExportOrtra)
	}

	teachers := router.Group("/teachers")
	{
		teachers.GET("/export/imputations/", c.Document.ExportImputations)
		teachers.GET("/charge-sheets/", c.Document.ChargeSheets)
	}

	router.GET("/klasses/update-forms/", c.Document.UpdateForms)

	// --- Imports ---
	imports := router.Group("/import")
	{
		imports.POST("/students/", c.Import.Import(services.ImportStudents))
		imports.POST("/hp/", c.Import.Import(services.ImportHP))
		imports.POST("/hp-contacts/", c.Import.Import(services.ImportHPContacts))
	}

	router.POST("/candidate/:id/confirmation/", c.Candidate.SendConfirmation)

	convocation := router.Group("/student/:id/convocation")
	{
		convocation.GET("/", c.Candidate.ConvocationDraft)
		convocation.POST("/", c.Candidate.SendConvocation)
	}

	// --- Administration ---
	admin := router.Group("/admin")
	{
		admin.POST("/klasses/", c.Admin.CreateKlass)
		admin.DELETE("/klasses/:id/", c.Admin.DeleteKlass)
		admin.DELETE("/teachers/:id/", c.Admin.DeleteTeacher)
		admin.POST("/corporations/", c.Admin.CreateCorporation)
		admin.DELETE("/corporations/:id/", c.Admin.DeleteCorporation)
		admin.POST("/students/:id/archive/", c.Admin.ArchiveStudent)
		admin.POST("/periods/", c.Admin.CreatePeriod)
		admin.POST("/availabilities/", c.Admin.CreateAvailabilities)
	}
}
