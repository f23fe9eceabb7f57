package main

import (
	"github.com/gin-gonic/gin"

	"github.com/academia-dev/academia-api/internal/handler"
	"github.com/academia-dev/academia-api/internal/middleware"
	"github.com/academia-dev/academia-api/internal/models"
	"github.com/academia-dev/academia-api/internal/service"
)

type handlers struct {
	auth        *handler.AuthHandler
	faculties   *handler.FacultyHandler
	careers     *handler.CareerHandler
	subjects    *handler.SubjectHandler
	finals      *handler.FinalExamHandler
	students    *handler.StudentHandler
	professors  *handler.ProfessorHandler
	grades      *handler.GradeHandler
	enrollments *handler.EnrollmentHandler
}

// registerRoutes mounts the API under the configured prefix. Catalog reads
// are open to any authenticated user; catalog writes are restricted to
// administrators, grading to professors and administrators, and the /me
// surface to the role that owns it.
func registerRoutes(r *gin.Engine, prefix string, auth *service.AuthService, h handlers) {
	api := r.Group(prefix)

	api.POST("/auth/login", h.auth.Login)
	api.POST("/auth/register", h.auth.Register)

	authed := api.Group("")
	authed.Use(middleware.JWT(auth))

	authed.GET("/auth/me", h.auth.Me)

	authed.GET("/faculties", h.faculties.List)
	authed.GET("/faculties/:code", h.faculties.Get)
	authed.GET("/faculties/:code/careers", h.faculties.Careers)

	authed.GET("/careers", h.careers.List)
	authed.GET("/careers/:code", h.careers.Get)
	authed.GET("/careers/:code/subjects", h.careers.Subjects)

	authed.GET("/subjects", h.subjects.List)
	authed.GET("/subjects/:code", h.subjects.Get)
	authed.GET("/subjects/:code/finals", h.subjects.FinalExams)
	authed.GET("/subjects/:code/professors", h.subjects.Professors)

	authed.GET("/final-exams", h.finals.List)
	authed.GET("/final-exams/:id", h.finals.Get)
	authed.GET("/final-exams/:id/professors", h.finals.Professors)

	admin := authed.Group("")
	admin.Use(middleware.RequireRoles(models.RoleAdministrator))

	admin.POST("/faculties", h.faculties.Create)
	admin.PUT("/faculties/:code", h.faculties.Update)
	admin.DELETE("/faculties/:code", h.faculties.Delete)

	admin.POST("/careers", h.careers.Create)
	admin.PUT("/careers/:code", h.careers.Update)
	admin.DELETE("/careers/:code", h.careers.Delete)

	admin.POST("/subjects", h.subjects.Create)
	admin.PUT("/subjects/:code", h.subjects.Update)
	admin.DELETE("/subjects/:code", h.subjects.Delete)
	admin.PUT("/subjects/:code/professors", h.subjects.AssignProfessors)

	admin.POST("/final-exams", h.finals.Create)
	admin.PUT("/final-exams/:id", h.finals.Update)
	admin.DELETE("/final-exams/:id", h.finals.Delete)
	admin.PUT("/final-exams/:id/professors", h.finals.AssignProfessors)
	admin.GET("/final-exams/:id/inscriptions", h.finals.Inscriptions)

	admin.GET("/students", h.students.List)
	admin.GET("/students/:id", h.students.Get)
	admin.PUT("/students/:id", h.students.Update)

	admin.GET("/professors", h.professors.List)
	admin.GET("/professors/:id", h.professors.Get)

	staff := authed.Group("")
	staff.Use(middleware.RequireRoles(models.RoleAdministrator, models.RoleProfessor))

	staff.GET("/subjects/:code/grades", h.grades.SubjectGrades)
	staff.GET("/subjects/:code/roster/export", h.subjects.ExportRoster)
	staff.GET("/grades/:id", h.grades.Get)
	staff.PUT("/grades/:id", h.grades.Update)

	professor := authed.Group("/professors/me")
	professor.Use(middleware.RequireRoles(models.RoleProfessor))

	professor.GET("/dashboard", h.professors.Dashboard)
	professor.GET("/finals/:id/inscriptions", h.professors.ExamInscriptions)

	student := authed.Group("/students/me")
	student.Use(middleware.RequireRoles(models.RoleStudent))

	student.GET("/dashboard", h.students.Dashboard)
	student.GET("/certificate", h.students.Certificate)
	student.GET("/available-subjects", h.enrollments.AvailableSubjects)
	student.GET("/available-finals", h.enrollments.AvailableFinals)
	student.POST("/inscriptions/subjects", h.enrollments.EnrollSubject)
	student.DELETE("/inscriptions/subjects/:code", h.enrollments.WithdrawSubject)
	student.POST("/inscriptions/finals", h.enrollments.EnrollFinal)
	student.DELETE("/inscriptions/finals/:id", h.enrollments.WithdrawFinal)
}
