package models

import (
	"encoding/base64"

	"github.com/roufai-ne/crou-management-system-sub011/utils"
	"gorm.io/gorm"
)

type Identifier interface {
	GetId() int
}

type PageInfo struct {
	StartCursor string `json:"startCursor"`
	EndCursor   string `json:"endCursor"`
	HasNextPage *bool  `json:"hasNextPage,omitempty"`
}

type Cursor interface {
	GetCursor() string
}

type Edge[N Cursor] struct {
	Node   *N     `json:"node"`
	Cursor string `json:"cursor"`
}

func DecodeCursor(cursor *string) (string, error) {
	decodedCursor := ""
	if cursor != nil {
		b, err := base64.StdEncoding.DecodeString(*cursor)
		if err != nil {
			return decodedCursor, err
		}
		decodedCursor = string(b)
	}
	return decodedCursor, nil
}

func EncodeCursor(cursor string) string {
	return base64.StdEncoding.EncodeToString([]byte(cursor))
}

// fetch results for pagination
func FetchPagePureCursor[T Cursor](dbCtx *gorm.DB,
	limit int,
	after *string,
	cursorColumn string,
	cmpOperator string,
) ([]Edge[T], *PageInfo, error) {

	nodes := make([]*T, 0)

	// order
	if cmpOperator == ">" {
		dbCtx.Order(cursorColumn)
	} else if cmpOperator == "<" {
		dbCtx.Order(cursorColumn + " DESC")
	}

	// filter
	decodedCursor, err := DecodeCursor(after)
	if err != nil {
		return nil, nil, err
	}
	if decodedCursor != "" {
		dbCtx.Where(cursorColumn+" "+cmpOperator+" ?", decodedCursor)
	}

	// db query
	dbCtx.Limit(limit + 1)
	if err = dbCtx.Find(&nodes).Error; err != nil {
		return nil, nil, err
	}

	/*
		constructing edges & page info
	*/
	count := 0
	hasNextPage := false
	edges := make([]Edge[T], 0, len(nodes))
	for _, node := range nodes {
		if count == limit {
			hasNextPage = true
		}
		if count < limit {
			var edge Edge[T]
			edge.Node = node
			edge.Cursor = EncodeCursor((*node).GetCursor())
			edges = append(edges, edge)
			count++
		}
	}

	pageInfo := PageInfo{
		StartCursor: "",
		EndCursor:   "",
		HasNextPage: utils.NewFalse(),
	}
	if count > 0 {
		pageInfo = PageInfo{
			StartCursor: edges[0].Cursor,
			EndCursor:   edges[count-1].Cursor,
			HasNextPage: &hasNextPage,
		}
	}

	return edges, &pageInfo, nil
}
