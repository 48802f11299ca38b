package builder

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/neuralmap-cli/internal/core/domain"
)

// FallbackProjectName titles the root when neither a linked name nor a project path is given.
const FallbackProjectName = "Project"

// Edge weights and labels.
const (
	parentChildWeight = 1.0
	importWeight      = 0.8
	styleWeight       = 0.5
	functionalWeight  = 0.3

	importLabel     = "import"
	styleLabel      = "style"
	functionalLabel = "functional"
)

// Options configures a build.
type Options struct {
	// ThemeID is copied onto the graph.
	ThemeID string

	// ProjectPath is where the files came from. Its last segment names the
	// project when LinkedProjectName is empty.
	ProjectPath string

	// LinkedProjectName names the project explicitly.
	LinkedProjectName string

	// UserID is stamped on the graph.
	UserID string

	// Now returns the build timestamp. Defaults to time.Now.
	Now func() time.Time

	// NewID generates node and edge ids. Defaults to uuid.NewString.
	NewID func() string
}

// fileEntry is an input file with its normalised path.
type fileEntry struct {
	file   domain.NeuralFile
	path   string
	ext    string
	nodeID string
}

// graphBuilder accumulates nodes and edges for a single build.
type graphBuilder struct {
	opts   Options
	now    time.Time
	name   string
	rootID string
	nodes  []domain.NeuralNode
	edges  []domain.NeuralEdge

	// linked holds unordered node pairs already joined by an imports or semantic edge.
	linked map[[2]string]struct{}
}

// Build derives the project graph from files.
// A failed build returns an error and no graph.
func Build(files []domain.NeuralFile, opts Options) (*domain.NeuralGraph, domain.BuildStats, error) {
	start := time.Now()
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}

	entries := make([]fileEntry, 0, len(files))
	for i, f := range files {
		p := domain.NormalizePath(f.Path)
		if p == "" {
			return nil, domain.BuildStats{}, fmt.Errorf("file %d (%q) has an empty path: %w", i, f.Path, domain.ErrInvalidInput)
		}
		entries = append(entries, fileEntry{file: f, path: p, ext: domain.Extension(p)})
	}

	b := &graphBuilder{
		opts:   opts,
		now:    opts.Now(),
		name:   projectName(opts.LinkedProjectName, opts.ProjectPath),
		edges:  []domain.NeuralEdge{},
		linked: make(map[[2]string]struct{}),
	}
	b.addRoot(len(entries))
	folderIDs := b.addFolders(entries)
	byPath := b.addFiles(entries, folderIDs)
	b.addImportEdges(entries, byPath)
	b.addSemanticEdges(entries)

	graph := b.graph()
	stats := domain.BuildStats{
		NodeCount: len(graph.Nodes),
		EdgeCount: len(graph.Edges),
		Elapsed:   float64(time.Since(start).Microseconds()) / 1000,
	}
	return graph, stats, nil
}

// projectName resolves the root title: linked name, then the last non-empty
// segment of the project path, then the fallback.
func projectName(linked, projectPath string) string {
	if name := strings.TrimSpace(linked); name != "" {
		return name
	}
	if p := domain.NormalizePath(projectPath); p != "" {
		return p[strings.LastIndex(p, "/")+1:]
	}
	return FallbackProjectName
}

func (b *graphBuilder) addRoot(fileCount int) {
	summary := "empty project"
	if fileCount > 0 {
		summary = fmt.Sprintf("%d files", fileCount)
	}
	b.nodes = append(b.nodes, b.node(domain.NodeProject, b.name, summary, []string{}, domain.ImportanceProject, nil))
	b.nodes[0].Expanded = true
	b.rootID = b.nodes[0].ID
}

// addFolders creates a node for every proper-prefix directory, parents first.
// It returns folder path to node id. A top-level folder named after the
// project is not created and maps to the root instead.
func (b *graphBuilder) addFolders(entries []fileEntry) map[string]string {
	set := make(map[string]struct{})
	for _, e := range entries {
		segs := strings.Split(e.path, "/")
		for i := 1; i < len(segs); i++ {
			set[strings.Join(segs[:i], "/")] = struct{}{}
		}
	}

	paths := make([]string, 0, len(set))
	for p := range set {
		paths = append(paths, p)
	}
	sort.Slice(paths, func(i, j int) bool {
		di, dj := strings.Count(paths[i], "/"), strings.Count(paths[j], "/")
		if di != dj {
			return di < dj
		}
		return paths[i] < paths[j]
	})

	rootID := b.rootID
	ids := make(map[string]string, len(paths))
	for _, p := range paths {
		parent, title := dirOf(p), p[strings.LastIndex(p, "/")+1:]
		if parent == "" && title == b.name {
			ids[p] = rootID
			continue
		}
		parentID := rootID
		if parent != "" {
			parentID = ids[parent]
		}
		n := b.node(domain.NodeFolder, title, p, []string{}, domain.ImportanceFolder, &parentID)
		b.nodes = append(b.nodes, n)
		b.addEdge(parentID, n.ID, domain.EdgeParentChild, "", parentChildWeight, false)
		ids[p] = n.ID
	}
	return ids
}

// addFiles creates one node per file and returns normalised path to node id.
func (b *graphBuilder) addFiles(entries []fileEntry, folderIDs map[string]string) map[string]string {
	byPath := make(map[string]string, len(entries))
	for i := range entries {
		e := &entries[i]
		parentID := b.rootID
		if dir := dirOf(e.path); dir != "" {
			parentID = folderIDs[dir]
		}
		title := e.file.Name
		if title == "" {
			title = e.path[strings.LastIndex(e.path, "/")+1:]
		}
		n := b.node(classify(e.ext), title, e.path, fileTags(e.ext, e.file.Type), domain.ImportanceFile, &parentID)
		n.SourceRef = &domain.SourceRef{ID: e.file.ID, Kind: "file"}
		b.nodes = append(b.nodes, n)
		b.addEdge(parentID, n.ID, domain.EdgeParentChild, "", parentChildWeight, false)
		e.nodeID = n.ID
		if _, dup := byPath[e.path]; !dup {
			byPath[e.path] = n.ID
		}
	}
	return byPath
}

func (b *graphBuilder) addImportEdges(entries []fileEntry, byPath map[string]string) {
	for _, e := range entries {
		if classify(e.ext) != domain.NodeCode || e.file.Content == "" {
			continue
		}
		for _, specifier := range importSpecifiers(e.file.Content) {
			target, ok := resolveImport(e.path, specifier, b.name, byPath)
			if !ok {
				continue
			}
			b.link(e.nodeID, byPath[target], domain.EdgeImports, importLabel, importWeight, false)
		}
	}
}

func (b *graphBuilder) addSemanticEdges(entries []fileEntry) {
	type selectorFile struct {
		nodeID    string
		selectors selectorSet
		sorted    []string
	}
	var html, css []selectorFile
	for _, e := range entries {
		switch {
		case isHTML(e.ext):
			if s := htmlSelectors(e.file.Content); len(s) > 0 {
				html = append(html, selectorFile{e.nodeID, s, s.sorted()})
			}
		case isStylesheet(e.ext):
			if s := cssSelectors(e.file.Content); len(s) > 0 {
				css = append(css, selectorFile{e.nodeID, s, s.sorted()})
			}
		}
	}

	for _, e := range entries {
		if classify(e.ext) != domain.NodeCode || e.file.Content == "" {
			continue
		}
		for _, h := range html {
			for _, sel := range h.sorted {
				if strings.Contains(e.file.Content, sel) {
					b.link(e.nodeID, h.nodeID, domain.EdgeSemantic, functionalLabel, functionalWeight, true)
					break
				}
			}
		}
	}

	for _, h := range html {
		for _, c := range css {
			for _, sel := range h.sorted {
				if c.selectors.has(sel) {
					b.link(h.nodeID, c.nodeID, domain.EdgeSemantic, styleLabel, styleWeight, true)
					break
				}
			}
		}
	}
}

// link adds an imports or semantic edge unless the pair is already linked or
// the edge would be a self-loop.
func (b *graphBuilder) link(source, target string, typ domain.EdgeType, label string, weight float64, bidirectional bool) {
	if source == target {
		return
	}
	key := [2]string{source, target}
	if target < source {
		key = [2]string{target, source}
	}
	if _, ok := b.linked[key]; ok {
		return
	}
	b.linked[key] = struct{}{}
	b.addEdge(source, target, typ, label, weight, bidirectional)
}

func (b *graphBuilder) addEdge(source, target string, typ domain.EdgeType, label string, weight float64, bidirectional bool) {
	b.edges = append(b.edges, domain.NeuralEdge{
		ID:            b.opts.NewID(),
		Source:        source,
		Target:        target,
		Type:          typ,
		Label:         label,
		Weight:        weight,
		Bidirectional: bidirectional,
		CreatedAt:     b.now,
	})
}

func (b *graphBuilder) node(typ domain.NodeType, title, summary string, tags []string, importance float64, parentID *string) domain.NeuralNode {
	return domain.NeuralNode{
		ID:         b.opts.NewID(),
		Type:       typ,
		Title:      title,
		Summary:    summary,
		Tags:       tags,
		Importance: importance,
		ParentID:   parentID,
		CreatedAt:  b.now,
		UpdatedAt:  b.now,
	}
}

func (b *graphBuilder) graph() *domain.NeuralGraph {
	rootID := b.rootID
	return &domain.NeuralGraph{
		Version:    domain.GraphVersion,
		UserID:     b.opts.UserID,
		RootNodeID: rootID,
		Title:      b.name,
		Nodes:      b.nodes,
		Edges:      b.edges,
		Clusters:   []domain.Cluster{},
		CreatedAt:  b.now,
		UpdatedAt:  b.now,
		ViewState: domain.ViewState{
			ActiveTab:       "graph",
			ExpandedNodeIDs: []string{rootID},
			PinnedNodeIDs:   []string{},
			SelectedNodeIDs: []string{},
			CameraPosition:  domain.Vec3{Z: 300},
		},
		ThemeID:     b.opts.ThemeID,
		ProjectPath: b.opts.ProjectPath,
	}
}
