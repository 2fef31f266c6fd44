package deployment

import (
	"embed"
	"os"
	"path/filepath"
	"text/template"

	"github.com/sesdev/sesdev/pkg/config"
)

//go:embed templates
var templates embed.FS

type templateNode struct {
	Name    string
	Roles   []string
	Storage bool
}

type templateData struct {
	ID          string
	Box         string
	CPUs        int
	Memory      int // MiB
	NumDisks    int
	DiskSize    int // GiB
	LibvirtHost string
	LibvirtUser string
	StoragePool string
	Repos       []string
	Nodes       []templateNode
}

// renderVagrantfile writes the deployment's Vagrantfile from the embedded
// template, filling unset keys from the global defaults.
func (d *Deployment) renderVagrantfile() error {
	defaults := config.C.Defaults
	libvirt := config.C.Libvirt

	data := templateData{
		ID:          d.ID,
		Box:         d.Box(),
		CPUs:        d.Settings.Int("cpus", defaults.CPUs),
		Memory:      d.Settings.Int("ram", defaults.RAM) * 1024,
		NumDisks:    d.Settings.Int("num_disks", defaults.NumDisks),
		DiskSize:    d.Settings.Int("disk_size", defaults.DiskSize),
		LibvirtHost: d.Settings.String("libvirt_host", libvirt.Host),
		LibvirtUser: d.Settings.String("libvirt_user", libvirt.User),
		StoragePool: d.Settings.String("libvirt_storage_pool", libvirt.StoragePool),
		Repos:       d.Settings.Strings("repos"),
	}
	for _, name := range d.nodeOrder {
		n := d.Nodes[name]
		data.Nodes = append(data.Nodes, templateNode{
			Name:    n.Name,
			Roles:   n.Roles,
			Storage: containsRole(n.Roles, "storage"),
		})
	}

	t := template.Must(template.New("Vagrantfile.tmpl").Funcs(template.FuncMap{
		"seq": func(n int) []int {
			out := make([]int, n)
			for i := range out {
				out[i] = i
			}
			return out
		},
	}).ParseFS(templates, "templates/Vagrantfile.tmpl"))

	f, err := os.Create(filepath.Join(d.path, "Vagrantfile"))
	if err != nil {
		return err
	}
	err = t.Execute(f, data)
	f.Close()
	return err
}
