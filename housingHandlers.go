package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/roufai-ne/crou-management-system-sub011/models"
)

func listResidencesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		tc := requireTenant(c)
		if tc == nil {
			return
		}
		residences, err := models.ListResidences(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "residences": residences})
	}
}

func createResidenceHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		tc := requireTenant(c)
		if tc == nil {
			return
		}
		var input models.NewResidence
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, errorEnvelope("VALIDATION", err.Error()))
			return
		}
		residence, err := models.CreateResidence(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"success": true, "residence": residence})
	}
}

func createRoomHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		tc := requireTenant(c)
		if tc == nil {
			return
		}
		var input models.NewRoom
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, errorEnvelope("VALIDATION", err.Error()))
			return
		}
		room, err := models.CreateRoom(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"success": true, "room": room})
	}
}

func listHousingAssignmentsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		tc := requireTenant(c)
		if tc == nil {
			return
		}
		var academicYear *string
		if v := c.Query("academic_year"); v != "" {
			academicYear = &v
		}
		activeOnly := c.Query("active") == "true"

		assignments, err := models.ListHousingAssignments(c.Request.Context(), academicYear, activeOnly)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "assignments": assignments})
	}
}

func createHousingAssignmentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		tc := requireTenant(c)
		if tc == nil {
			return
		}
		var input models.NewHousingAssignment
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, errorEnvelope("VALIDATION", err.Error()))
			return
		}
		assignment, err := models.CreateHousingAssignment(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"success": true, "assignment": assignment})
	}
}

func endHousingAssignmentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		tc := requireTenant(c)
		if tc == nil {
			return
		}
		id, ok := pathId(c)
		if !ok {
			return
		}
		assignment, err := models.EndHousingAssignment(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "assignment": assignment})
	}
}
