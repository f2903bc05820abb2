package bootstrap

import (
	cvdomain "github.com/freelancehub/dashboard-backend/internal/cv/domain"
	cvhttp "github.com/freelancehub/dashboard-backend/internal/cv/http"
	"github.com/freelancehub/dashboard-backend/internal/dashboard"
	filesdomain "github.com/freelancehub/dashboard-backend/internal/files/domain"
	fileshttp "github.com/freelancehub/dashboard-backend/internal/files/http"
	pipelinesdomain "github.com/freelancehub/dashboard-backend/internal/pipelines/domain"
	pipelineshttp "github.com/freelancehub/dashboard-backend/internal/pipelines/http"
	shipmentsdomain "github.com/freelancehub/dashboard-backend/internal/shipments/domain"
	shipmentshttp "github.com/freelancehub/dashboard-backend/internal/shipments/http"
	videosdomain "github.com/freelancehub/dashboard-backend/internal/videos/domain"
	videoshttp "github.com/freelancehub/dashboard-backend/internal/videos/http"
)

// Dashboards holds every wired collection. The API and the worker build it
// from the same Deps so both see the same store.
type Dashboards struct {
	Pipelines *dashboard.Collection[pipelinesdomain.Workflow]
	Files     *dashboard.Collection[filesdomain.CloudFile]
	Shipments *dashboard.Collection[shipmentsdomain.Shipment]
	Videos    *dashboard.Collection[videosdomain.Video]
	CV        cvhttp.Collections
}

func NewDashboards(deps dashboard.Deps) *Dashboards {
	return &Dashboards{
		Pipelines: pipelineshttp.NewCollection(deps),
		Files:     fileshttp.NewCollection(deps),
		Shipments: shipmentshttp.NewCollection(deps),
		Videos:    videoshttp.NewCollection(deps),
		CV:        cvhttp.NewCollections(deps),
	}
}

// Kinds lists every collection kind stored in the record table.
func Kinds() []string {
	return []string{
		pipelinesdomain.Kind,
		filesdomain.Kind,
		shipmentsdomain.Kind,
		videosdomain.Kind,
		cvdomain.KindProfile,
		cvdomain.KindExperiences,
		cvdomain.KindEducations,
		cvdomain.KindSkills,
		cvdomain.KindProjects,
		cvdomain.KindAchievements,
	}
}
