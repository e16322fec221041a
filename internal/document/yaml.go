package document

import (
	"fmt"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const dateLayout = "2006-01-02"

// Parse decodes raw YAML bytes into a Document, recording per-node comments
// so Marshal can reattach them to any keys that survive a subsequent edit.
func Parse(raw []byte) (*Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(raw, &root); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	if len(root.Content) == 0 {
		return New(), nil
	}
	mapping := root.Content[0]
	if mapping.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("document root must be a mapping")
	}

	d := New()
	d.commentsByPath = map[string]nodeComments{}

	for i := 0; i+1 < len(mapping.Content); i += 2 {
		key := mapping.Content[i]
		val := mapping.Content[i+1]
		switch key.Value {
		case "version":
			n, err := strconv.Atoi(val.Value)
			if err != nil {
				return nil, fmt.Errorf("version: %w", err)
			}
			d.Version = n
		case "team":
			if err := parseTeam(d, val); err != nil {
				return nil, err
			}
		case "environments":
			if err := parseEnvironments(d, val); err != nil {
				return nil, err
			}
		case "metadata":
			if err := parseMetadata(d, val); err != nil {
				return nil, err
			}
		}
	}
	return d, nil
}

func parseTeam(d *Document, node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("team must be a mapping")
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		nameNode := node.Content[i]
		memberNode := node.Content[i+1]
		m := &Member{Name: nameNode.Value}
		d.commentsByPath["team:"+m.Name] = nodeComments{head: nameNode.HeadComment, line: memberNode.LineComment, foot: memberNode.FootComment}
		for j := 0; j+1 < len(memberNode.Content); j += 2 {
			fk := memberNode.Content[j]
			fv := memberNode.Content[j+1]
			switch fk.Value {
			case "pubkey":
				m.Pubkey = fv.Value
			case "role":
				m.Role = Role(fv.Value)
			case "added":
				t, err := time.Parse(dateLayout, fv.Value)
				if err != nil {
					return fmt.Errorf("team.%s.added: %w", m.Name, err)
				}
				m.Added = t
			case "environments":
				envs := make([]string, 0, len(fv.Content))
				for _, item := range fv.Content {
					envs = append(envs, item.Value)
				}
				m.Environments = envs
			}
		}
		d.AddMember(m)
	}
	return nil
}

func parseEnvironments(d *Document, node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("environments must be a mapping")
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		envNameNode := node.Content[i]
		envNode := node.Content[i+1]
		env := d.EnsureEnvironment(envNameNode.Value)
		d.commentsByPath["environments:"+env.Name] = nodeComments{head: envNameNode.HeadComment}
		for j := 0; j+1 < len(envNode.Content); j += 2 {
			keyNode := envNode.Content[j]
			entryNode := envNode.Content[j+1]
			entry := &SecretEntry{Name: keyNode.Value, Kind: KindString}
			d.commentsByPath["environments:"+env.Name+":"+entry.Name] = nodeComments{head: keyNode.HeadComment, line: entryNode.LineComment, foot: entryNode.FootComment}
			for k := 0; k+1 < len(entryNode.Content); k += 2 {
				fk := entryNode.Content[k]
				fv := entryNode.Content[k+1]
				switch fk.Value {
				case "value":
					entry.Value = fv.Value
				case "set_by":
					entry.SetBy = fv.Value
				case "modified":
					t, err := time.Parse(time.RFC3339, fv.Value)
					if err != nil {
						return fmt.Errorf("environments.%s.%s.modified: %w", env.Name, entry.Name, err)
					}
					entry.Modified = t
				case "kind":
					entry.Kind = SecretKind(fv.Value)
				}
			}
			env.Secrets[entry.Name] = entry
		}
	}
	return nil
}

func parseMetadata(d *Document, node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("metadata must be a mapping")
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		d.Metadata[node.Content[i].Value] = node.Content[i+1].Value
	}
	return nil
}

// Marshal serializes the document back to YAML with the deterministic
// ordering rules: environments "default" first then lexicographic, secrets
// lexicographic per environment, team in insertion order. Comments recorded
// at Parse time are reattached to keys that still exist.
func (d *Document) Marshal() ([]byte, error) {
	root := &yaml.Node{Kind: yaml.MappingNode}

	addScalarPair(root, "version", strconv.Itoa(d.Version))

	teamNode := &yaml.Node{Kind: yaml.MappingNode}
	for _, m := range d.Team {
		c := d.comments("team:" + m.Name)
		keyNode := &yaml.Node{Kind: yaml.ScalarNode, Value: m.Name, HeadComment: c.head}
		memberNode := &yaml.Node{Kind: yaml.MappingNode, LineComment: c.line, FootComment: c.foot}
		addScalarPair(memberNode, "pubkey", m.Pubkey)
		addScalarPair(memberNode, "role", string(m.Role))
		addScalarPair(memberNode, "added", m.Added.Format(dateLayout))
		if m.Environments != nil {
			seqNode := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
			for _, e := range m.Environments {
				seqNode.Content = append(seqNode.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: e})
			}
			memberKey := &yaml.Node{Kind: yaml.ScalarNode, Value: "environments"}
			memberNode.Content = append(memberNode.Content, memberKey, seqNode)
		}
		teamNode.Content = append(teamNode.Content, keyNode, memberNode)
	}
	addNodePair(root, "team", teamNode)

	envNode := &yaml.Node{Kind: yaml.MappingNode}
	for _, envName := range d.EnvironmentNames() {
		env := d.Environments[envName]
		c := d.comments("environments:" + envName)
		envKeyNode := &yaml.Node{Kind: yaml.ScalarNode, Value: envName, HeadComment: c.head}
		secretsNode := &yaml.Node{Kind: yaml.MappingNode}
		for _, secretName := range env.SecretNames() {
			entry := env.Secrets[secretName]
			sc := d.comments("environments:" + envName + ":" + secretName)
			secretKeyNode := &yaml.Node{Kind: yaml.ScalarNode, Value: secretName, HeadComment: sc.head}
			entryNode := &yaml.Node{Kind: yaml.MappingNode, LineComment: sc.line, FootComment: sc.foot}
			addScalarPair(entryNode, "value", entry.Value)
			addScalarPair(entryNode, "set_by", entry.SetBy)
			addScalarPair(entryNode, "modified", entry.Modified.UTC().Format(time.RFC3339))
			if entry.Kind != "" && entry.Kind != KindString {
				addScalarPair(entryNode, "kind", string(entry.Kind))
			}
			secretsNode.Content = append(secretsNode.Content, secretKeyNode, entryNode)
		}
		envNode.Content = append(envNode.Content, envKeyNode, secretsNode)
	}
	addNodePair(root, "environments", envNode)

	if len(d.Metadata) > 0 {
		metaNode := &yaml.Node{Kind: yaml.MappingNode}
		keys := make([]string, 0, len(d.Metadata))
		for k := range d.Metadata {
			keys = append(keys, k)
		}
		sortStrings(keys)
		for _, k := range keys {
			addScalarPair(metaNode, k, d.Metadata[k])
		}
		addNodePair(root, "metadata", metaNode)
	}

	doc := &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{root}}
	out, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	return out, nil
}

func (d *Document) comments(path string) nodeComments {
	if d.commentsByPath == nil {
		return nodeComments{}
	}
	return d.commentsByPath[path]
}

func addScalarPair(parent *yaml.Node, key, value string) {
	parent.Content = append(parent.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Value: key},
		&yaml.Node{Kind: yaml.ScalarNode, Value: value},
	)
}

func addNodePair(parent *yaml.Node, key string, value *yaml.Node) {
	parent.Content = append(parent.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Value: key},
		value,
	)
}
